// Package repository handles all interactions with the document store.
//
// It owns the query construction for listings (filters, windows, ordering)
// and translates store outcomes into counts and absence signals, abstracting
// MongoDB away from the service layer.
package repository
