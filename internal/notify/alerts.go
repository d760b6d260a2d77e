package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/oddsync/arbscan/internal/domain"
)

// Event types emitted by the scan loop.
const (
	EventScanComplete     = "scan.complete"
	EventOpportunityFound = "opportunity.found"
)

// AlertScanComplete summarizes a finished scan.
func (n *Notifier) AlertScanComplete(ctx context.Context, meta domain.ScanMeta) error {
	message := fmt.Sprintf("%d opportunities (%d arb, %d +EV) in %.1fs\nSources: %s",
		meta.TotalCount, meta.ArbCount, meta.EVCount, meta.ScanTime, formatSources(meta.Sources))
	return n.Notify(ctx, EventScanComplete, "Scan complete", message)
}

// AlertOpportunities pushes one alert per opportunity whose edge clears
// minEdgePct, capped at five per scan to keep channels readable.
func (n *Notifier) AlertOpportunities(ctx context.Context, opps []domain.Opportunity, minEdgePct float64) error {
	const maxAlerts = 5

	sent := 0
	var firstErr error
	for _, o := range opps {
		if o.Edge() < minEdgePct {
			continue
		}
		if sent >= maxAlerts {
			break
		}
		if err := n.Notify(ctx, EventOpportunityFound, opportunityTitle(o), opportunityMessage(o)); err != nil && firstErr == nil {
			firstErr = err
		}
		sent++
	}
	return firstErr
}

func opportunityTitle(o domain.Opportunity) string {
	if o.Type == domain.OpportunityArb {
		return fmt.Sprintf("Arb %.2f%% net: %s", o.NetArbPct, o.Event)
	}
	return fmt.Sprintf("+EV %.2f%%: %s", o.EVPct, o.Event)
}

func opportunityMessage(o domain.Opportunity) string {
	return fmt.Sprintf("%s: %s %s\nvs %s: %s\nConfidence %.2f, risk %s",
		o.PlatformA.Name, o.PlatformA.Side, priceLabel(o.PlatformA),
		o.PlatformB.Name, o.PlatformB.Side,
		o.Confidence, o.Risk)
}

func priceLabel(leg domain.Leg) string {
	if leg.AmericanOdds != 0 {
		if leg.AmericanOdds > 0 {
			return fmt.Sprintf("(+%d)", leg.AmericanOdds)
		}
		return fmt.Sprintf("(%d)", leg.AmericanOdds)
	}
	return fmt.Sprintf("@ %.2f", leg.Price)
}

func formatSources(sources map[domain.Source]domain.SourceStatus) string {
	if len(sources) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(sources))
	for _, src := range []domain.Source{domain.SourcePolymarket, domain.SourceKalshi, domain.SourceSportsbook} {
		if status, ok := sources[src]; ok {
			parts = append(parts, fmt.Sprintf("%s=%s", src, status))
		}
	}
	return strings.Join(parts, ", ")
}
