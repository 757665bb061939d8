// Package resources builds Selling Partner API requests for a representative
// slice of endpoints (orders and notification destinations). Requests carry
// the LWA access token, are rate limited per operation and may be signed with
// AWS Signature Version 4. Bodies travel through package schema in both
// directions.
package resources
