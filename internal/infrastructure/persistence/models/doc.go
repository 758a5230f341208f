// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; each model converts to and from its
// entity with ToDomain and FromDomain.
//
// Tables:
//   - payments: escrow records (payment.go)
//   - service_requests: booked jobs (service_request.go)
//   - service_pricing: the priced catalogue (pricing.go)
//   - users, provider_profiles, reviews: accounts and ratings (account.go)
//   - trust_scores: computed provider trust (trust.go)
//   - audit_logs: security audit trail (audit.go)
package models
