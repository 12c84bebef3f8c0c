// Package models defines the domain entities for the SuperCron service:
// warehouse locations, inventory items, shelf label records and the
// comparison rows produced by the inventory diff job.
package models
