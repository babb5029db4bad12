package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coldcall-crm/internal/leads"
)

var ErrInvalidArgument = errors.New("analysis: invalid argument")

// Gateway produces one completion for a system+user prompt pair.
type Gateway interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// LeadSource supplies a caller's assigned leads.
type LeadSource interface {
	QueueFor(ctx context.Context, callerID string) ([]leads.Lead, error)
}

// Report is the outcome of one pattern-analysis run. Analysis is empty when
// the caller has no transcribed calls yet; Message says so.
type Report struct {
	Analysis string `json:"analysis,omitempty"`
	Message  string `json:"message,omitempty"`

	TotalAnalyzed      int `json:"total_analyzed"`
	InterestedCount    int `json:"interested_count"`
	NotInterestedCount int `json:"not_interested_count"`
}

// Service reviews a caller's finished calls: it splits their transcripts by
// outcome and asks the LLM gateway what distinguishes the calls that landed
// from the ones that did not.
type Service struct {
	gw     Gateway
	source LeadSource
}

func NewService(gw Gateway, source LeadSource) *Service {
	return &Service{gw: gw, source: source}
}

const transcriptSeparator = "\n\n---APPEL SUIVANT---\n\n"

const systemPrompt = `Tu es un expert en analyse d'appels de prospection téléphonique.
À partir de transcripts d'appels, identifie les patterns récurrents des appels réussis,
les patterns récurrents des appels non aboutis, et donne 3 à 5 conseils concrets
et actionnables pour améliorer les performances. Cite des phrases ou comportements
précis quand c'est possible. Réponds toujours en français.`

// AnalyzeCaller gathers the caller's completed, transcribed calls and returns
// the gateway's review. Only completed leads with a transcript participate.
func (s *Service) AnalyzeCaller(ctx context.Context, callerID string) (Report, error) {
	if callerID == "" {
		return Report{}, ErrInvalidArgument
	}

	assigned, err := s.source.QueueFor(ctx, callerID)
	if err != nil {
		return Report{}, err
	}

	var r Report
	var interested, notInterested []string
	for _, l := range assigned {
		if l.Status != leads.StatusCompleted || strings.TrimSpace(l.Transcript) == "" {
			continue
		}
		r.TotalAnalyzed++
		switch {
		case l.CallResult.Booked():
			interested = append(interested, l.Transcript)
		case l.CallResult == leads.ResultNotInterested:
			notInterested = append(notInterested, l.Transcript)
		}
	}
	r.InterestedCount = len(interested)
	r.NotInterestedCount = len(notInterested)

	if r.TotalAnalyzed == 0 {
		r.Message = "aucun transcript disponible pour analyse"
		return r, nil
	}

	analysis, err := s.gw.Complete(ctx, systemPrompt, buildUserPrompt(interested, notInterested))
	if err != nil {
		return Report{}, err
	}
	r.Analysis = analysis
	return r, nil
}

func buildUserPrompt(interested, notInterested []string) string {
	var b strings.Builder
	b.WriteString("Analyse ces transcripts d'appels pour identifier les patterns de succès et d'échec.\n\n")
	fmt.Fprintf(&b, "=== APPELS RÉUSSIS (%d appels) ===\n", len(interested))
	b.WriteString(joinOrPlaceholder(interested))
	fmt.Fprintf(&b, "\n\n=== APPELS NON RÉUSSIS (%d appels) ===\n", len(notInterested))
	b.WriteString(joinOrPlaceholder(notInterested))
	return b.String()
}

func joinOrPlaceholder(transcripts []string) string {
	if len(transcripts) == 0 {
		return "Aucun transcript disponible pour cette catégorie"
	}
	return strings.Join(transcripts, transcriptSeparator)
}
