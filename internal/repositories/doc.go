// package repositories persists collection runs and their labeled dataset rows in SQLite.
//
// Schema lives in the embedded migrations under internal/shared/sql. Runs get a human-readable
// sequence number from the sequences table in addition to their UUID; deleting a run removes its
// rows through the foreign key cascade.
package repositories
