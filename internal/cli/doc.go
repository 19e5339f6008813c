// Package cli implements the gatectl command tree.
//
// Every command loads configuration from the environment (see config.Config),
// builds a session over the billing API and closes it before returning:
//
//	gatectl check crm
//	gatectl quota max_photos_per_service --service svc_42
//	gatectl status --json
//	gatectl refresh
//	gatectl activate --session cs_123
//	gatectl serve --addr :8080
//	gatectl counts add photos 1 --service svc_42
package cli
