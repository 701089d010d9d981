// Package models contains the GORM models behind the fulfillment read side.
// They are kept apart from the domain views so the domain layer carries no
// ORM tags; each model converts itself with ToDomain.
//
// The tables belong to the ordering system. This service only reads them:
//   - orders: paid orders with quantity, address and totals
//   - users: customers referenced by orders.user_id
//   - qr_codes: the codes being printed, with their short code and colors
package models
