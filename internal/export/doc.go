// Package export writes the per-category tracker sheets.
//
// Each export appends the new rows of a category to the encrypted ledger,
// then rewrites the whole ledger for that category as a CSV file in the
// export directory. When an Uploader is configured the same file is pushed
// to the cloud drive.
package export
