package config

// RedactedConfig returns a shallow copy of cfg with sensitive fields replaced
// by the redaction placeholder "***". Use this when logging or printing the
// active configuration so secrets are never accidentally exposed.
func RedactedConfig(cfg *Config) Config {
	out := *cfg

	redact(&out.CSMarket.APIKey)
	redact(&out.Postgres.DSN)
	redact(&out.Postgres.Password)
	redact(&out.Redis.Password)
	redact(&out.S3.AccessKey)
	redact(&out.S3.SecretKey)
	redact(&out.Server.APIKey)
	redact(&out.Notify.TelegramToken)
	redact(&out.Notify.DiscordWebhookURL)

	// Copy slices and maps so callers cannot mutate the original through the
	// redacted copy.
	out.CSMarket.Markets = cloneStrings(cfg.CSMarket.Markets)
	out.Watchlist.Items = cloneStrings(cfg.Watchlist.Items)
	out.Server.CORSOrigins = cloneStrings(cfg.Server.CORSOrigins)
	out.Notify.Events = cloneStrings(cfg.Notify.Events)
	if cfg.Alerts.Targets != nil {
		out.Alerts.Targets = make([]AlertTarget, len(cfg.Alerts.Targets))
		copy(out.Alerts.Targets, cfg.Alerts.Targets)
	}
	if cfg.Fees.PerMarket != nil {
		out.Fees.PerMarket = make(map[string]float64, len(cfg.Fees.PerMarket))
		for k, v := range cfg.Fees.PerMarket {
			out.Fees.PerMarket[k] = v
		}
	}

	return out
}

const redacted = "***"

// redact replaces a non-empty string with the redacted placeholder.
func redact(s *string) {
	if *s != "" {
		*s = redacted
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
