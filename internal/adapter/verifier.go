package adapter

import (
	"context"

	"github.com/rs/zerolog"

	"sitedirectory/internal/domain"
	"sitedirectory/internal/observability"
)

// IdentityFetcher retrieves a site's identity record
type IdentityFetcher interface {
	GetWebIdentity(ctx context.Context, siteURL string) (domain.WebIdentity, error)
}

// VerifierConfig holds configuration for the hub verifier
type VerifierConfig struct {
	// FailOpen treats a hub whose identity cannot be fetched as verified.
	// When false, such hubs are dropped.
	FailOpen bool
}

// DefaultVerifierConfig returns the lenient default: the hub listing is trusted
// when verification is unreachable
func DefaultVerifierConfig() VerifierConfig {
	return VerifierConfig{FailOpen: true}
}

// HubVerifier confirms that listed hubs are hub roots and not hub members
type HubVerifier struct {
	config  VerifierConfig
	fetcher IdentityFetcher
	log     zerolog.Logger
}

// NewHubVerifier creates a new hub verifier
func NewHubVerifier(fetcher IdentityFetcher, config VerifierConfig, logger zerolog.Logger) *HubVerifier {
	return &HubVerifier{
		config:  config,
		fetcher: fetcher,
		log:     logger.With().Str("component", "verifier").Logger(),
	}
}

// Verify fetches the site's identity and reports whether it is a hub root.
// Fetch failures never propagate; the configured policy decides the outcome.
func (v *HubVerifier) Verify(ctx context.Context, siteURL string) bool {
	identity, err := v.fetcher.GetWebIdentity(ctx, siteURL)
	if err != nil {
		observability.RecordSourceFailure(observability.SourceIdentity)
		if v.config.FailOpen {
			observability.RecordHubOutcome(observability.OutcomeFailedOpen)
		} else {
			observability.RecordHubOutcome(observability.OutcomeFailedShut)
		}
		v.log.Warn().Err(err).
			Str("site", siteURL).
			Bool("fail_open", v.config.FailOpen).
			Msg("hub identity unavailable, applying verify policy")
		return v.config.FailOpen
	}

	isHub := domain.IsHubRoot(identity)
	if isHub {
		observability.RecordHubOutcome(observability.OutcomeVerified)
	} else {
		observability.RecordHubOutcome(observability.OutcomeDropped)
		v.log.Debug().
			Str("site", siteURL).
			Str("self_id", identity.SelfID).
			Str("hub_id", identity.HubPointerID).
			Msg("listed site is not a hub root")
	}
	return isHub
}
