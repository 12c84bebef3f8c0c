// Package repository provides data access for the SuperCron service.
//
// The Repository interface abstracts the location and inventory queries
// used by the scheduled jobs; GormRepository implements it over the
// primary and secondary MySQL databases.
package repository
