// Package repository provides a generic repository built on Bun for CRUD,
// sorted and paged queries, transactions and upserts, plus the Member and
// Team repositories written on top of it.
package repository
