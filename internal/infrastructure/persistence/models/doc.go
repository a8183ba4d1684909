// Package models contains the GORM persistence models. Domain types stay free
// of ORM tags; each model carries its table mapping and converts to and from
// its domain type.
//
// Structure:
// - base.go: shared timestamp columns
// - message.go: messages table
// - contact.go: contact_submissions table
// - customer.go: customers table
package models
