// Package models defines the domain types shared across the application:
// video records and their lifecycle, processing jobs, planning board tasks
// and tags, and the persistence contracts the repository layer implements.
package models
