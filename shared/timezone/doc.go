// Package timezone keeps the application timezone used for booking days and
// audit timestamps.
//
// Call Init once at startup with APP_TIMEZONE:
//
//	timezone.Init(cfg.App.Timezone)
//	now := timezone.Now()
//	day := timezone.Date(now) // "2024-06-15"
//
// Use standard IANA names such as "UTC" or "America/Sao_Paulo".
package timezone
