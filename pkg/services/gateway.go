// Package services holds the business logic: the query gateway, profile
// management, accounts, and history.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vizquery/vizquery-engine/pkg/adapters/connector"
	"github.com/vizquery/vizquery-engine/pkg/apperrors"
	"github.com/vizquery/vizquery-engine/pkg/audit"
	"github.com/vizquery/vizquery-engine/pkg/llm"
	"github.com/vizquery/vizquery-engine/pkg/logging"
	"github.com/vizquery/vizquery-engine/pkg/models"
	"github.com/vizquery/vizquery-engine/pkg/repositories"
	"github.com/vizquery/vizquery-engine/pkg/sanitize"
	"github.com/vizquery/vizquery-engine/pkg/sqlsafety"
)

// GatewayLimits bounds a single gateway request.
type GatewayLimits struct {
	// RowLimit caps rows returned to the caller.
	RowLimit int

	// DumpRowsPerTable caps rows read per table when a source is dumped
	// for model context.
	DumpRowsPerTable int

	// LLMTimeout bounds the external model call.
	LLMTimeout time.Duration
}

// QueryGateway answers a natural-language question against a registered
// source. Each request builds its own connector, which is disconnected on
// every exit path.
type QueryGateway interface {
	Execute(ctx context.Context, userID, profileID uuid.UUID, question string) (*models.QueryEnvelope, error)
}

type queryGateway struct {
	profiles repositories.ProfileRepository
	factory  connector.Factory
	model    llm.Client
	history  HistoryService
	limits   GatewayLimits
	auditor  *audit.SecurityAuditor
	logger   *zap.Logger
}

// NewQueryGateway creates a gateway with its dependencies.
func NewQueryGateway(
	profiles repositories.ProfileRepository,
	factory connector.Factory,
	model llm.Client,
	history HistoryService,
	limits GatewayLimits,
	logger *zap.Logger,
) QueryGateway {
	if limits.RowLimit <= 0 {
		limits.RowLimit = sqlsafety.DefaultRowLimit
	}
	if limits.DumpRowsPerTable <= 0 {
		limits.DumpRowsPerTable = sqlsafety.FallbackRowLimit
	}
	if limits.LLMTimeout <= 0 {
		limits.LLMTimeout = 60 * time.Second
	}
	return &queryGateway{
		profiles: profiles,
		factory:  factory,
		model:    model,
		history:  history,
		limits:   limits,
		auditor:  audit.NewSecurityAuditor(logger),
		logger:   logger.Named("gateway"),
	}
}

// Execute runs the fixed request protocol: resolve the profile, connect,
// fetch context, ask the model, validate and execute (relational only),
// sanitize, respond, and append history best-effort.
func (g *queryGateway) Execute(ctx context.Context, userID, profileID uuid.UUID, question string) (*models.QueryEnvelope, error) {
	if question == "" {
		return nil, apperrors.New(apperrors.KindMissingParameters, "question is required")
	}

	// Profile resolution happens before any connector is built, so an
	// unknown profile never opens a connection.
	profile, err := g.profiles.GetByID(ctx, userID, profileID)
	if err != nil {
		return nil, err
	}

	conn, err := g.factory.New(profile)
	if err != nil {
		return nil, err
	}
	defer conn.Disconnect()

	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}

	sourceContext, tables, err := g.fetchContext(ctx, profile, conn)
	if err != nil {
		return nil, err
	}

	analysis, err := g.invokeModel(ctx, question, sourceContext)
	if err != nil {
		return nil, err
	}

	finalQuery := ""
	var rows []connector.Row
	if profile.SourceKind == models.SourceKindRelational {
		finalQuery, err = sqlsafety.Validate(analysis.SQLQuery, tables, g.limits.RowLimit)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindUnsafeQueryRejected {
				g.auditor.UnsafeQueryRejected(userID, profileID, analysis.SQLQuery, apperrors.Message(err))
			}
			return nil, err
		}

		result, err := conn.ExecuteQuery(ctx, finalQuery)
		if err != nil {
			return nil, err
		}
		rows = result.Rows
	} else {
		rows, err = g.dumpRows(ctx, conn)
		if err != nil {
			return nil, err
		}
	}

	envelope := g.assembleEnvelope(finalQuery, rows, analysis)

	// Best-effort history append. The response is already computed; a
	// failure here is logged and swallowed.
	g.appendHistory(userID, profileID, question, finalQuery, envelope.Data)

	return envelope, nil
}

// fetchContext produces the model context for the source: the schema for
// relational backends, a bounded data dump otherwise. It also returns the
// table allowlist used by query validation.
func (g *queryGateway) fetchContext(ctx context.Context, profile *models.ConnectionProfile, conn connector.SourceConnector) (string, []string, error) {
	if profile.SourceKind == models.SourceKindRelational {
		s, err := conn.DescribeSchema(ctx)
		if err != nil {
			return "", nil, err
		}
		rendered, err := json.Marshal(s)
		if err != nil {
			return "", nil, fmt.Errorf("failed to render schema: %w", err)
		}
		return string(rendered), s.Tables(), nil
	}

	dump, err := conn.DumpAllData(ctx, g.limits.DumpRowsPerTable)
	if err != nil {
		return "", nil, err
	}
	rendered, err := json.Marshal(dump)
	if err != nil {
		return "", nil, fmt.Errorf("failed to render data dump: %w", err)
	}
	return string(rendered), nil, nil
}

func (g *queryGateway) invokeModel(ctx context.Context, question, sourceContext string) (*llm.Analysis, error) {
	modelCtx, cancel := context.WithTimeout(ctx, g.limits.LLMTimeout)
	defer cancel()

	analysis, err := g.model.Analyze(modelCtx, question, sourceContext)
	if err != nil {
		if modelCtx.Err() == context.DeadlineExceeded {
			return nil, apperrors.Wrap(apperrors.KindExternalModelUnavailable, "model call timed out", err)
		}
		return nil, err
	}
	return analysis, nil
}

// dumpRows flattens a bounded dump into response rows, tables in sorted
// order, capped at the row limit.
func (g *queryGateway) dumpRows(ctx context.Context, conn connector.SourceConnector) ([]connector.Row, error) {
	dump, err := conn.DumpAllData(ctx, g.limits.DumpRowsPerTable)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(dump))
	for name := range dump {
		names = append(names, name)
	}
	sort.Strings(names)

	var rows []connector.Row
	for _, name := range names {
		rows = append(rows, dump[name]...)
		if len(rows) >= g.limits.RowLimit {
			rows = rows[:g.limits.RowLimit]
			break
		}
	}
	return rows, nil
}

func (g *queryGateway) assembleEnvelope(finalQuery string, rows []connector.Row, analysis *llm.Analysis) *models.QueryEnvelope {
	data := sanitize.Rows(rows)
	if data == nil {
		data = []map[string]any{}
	}

	insight := analysis.Answer
	if insight == "" {
		insight = fmt.Sprintf("Query returned %d rows.", len(data))
	}
	chart := analysis.SuggestedChart
	if !models.ValidChartKind(chart) {
		chart = models.ChartTable
	}

	return &models.QueryEnvelope{
		Success:  true,
		SQLQuery: finalQuery,
		Data:     data,
		Insights: models.Insights{
			InsightText: insight,
			ChartType:   chart,
		},
		Message: "Query executed successfully",
	}
}

func (g *queryGateway) appendHistory(userID, profileID uuid.UUID, question, finalQuery string, data []map[string]any) {
	if g.history == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := g.history.Record(ctx, userID, profileID, question, finalQuery, data); err != nil {
			g.logger.Warn("failed to record query history",
				zap.String("query", logging.SanitizeQuery(finalQuery)),
				zap.Error(err))
		}
	}()
}

var _ QueryGateway = (*queryGateway)(nil)
