// Command statepulse runs the AI-policy legislation ingestion pipeline:
// state bills, federal bills, votes, legislators and executive orders,
// swept incrementally into the document store.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	checkpointfile "github.com/statepulse/statepulse-ingest/internal/adapters/driven/checkpoint/file"
	configfile "github.com/statepulse/statepulse-ingest/internal/adapters/driven/config/file"
	mongostore "github.com/statepulse/statepulse-ingest/internal/adapters/driven/storage/mongo"
	"github.com/statepulse/statepulse-ingest/internal/adapters/driven/summariser"
	"github.com/statepulse/statepulse-ingest/internal/adapters/driving/cli"
	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driven"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driving"
	"github.com/statepulse/statepulse-ingest/internal/core/services"
	"github.com/statepulse/statepulse-ingest/internal/fetch"
	"github.com/statepulse/statepulse-ingest/internal/logger"
	"github.com/statepulse/statepulse-ingest/internal/sources"
	"github.com/statepulse/statepulse-ingest/internal/sources/congress"
	"github.com/statepulse/statepulse-ingest/internal/sources/openstates"
	"github.com/statepulse/statepulse-ingest/internal/sources/whitehouse"
)

func main() {
	pipe, err := newPipeline()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	cli.Configure(pipe.dependencies())
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// pipeline holds the file-backed state shared by every command. Mongo
// and the upstream clients are wired lazily, per command, so status and
// version never require credentials they do not use.
type pipeline struct {
	settings    driven.ConfigStore
	checkpoints driven.CheckpointStore
	watermarks  driven.WatermarkStore
}

func newPipeline() (*pipeline, error) {
	settings, err := configfile.NewConfigStore(os.Getenv("STATEPULSE_CONFIG"))
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	dataDir := settings.GetString("paths.data_dir", "data")
	return &pipeline{
		settings:    settings,
		checkpoints: checkpointfile.NewStore(dataDir),
		watermarks:  checkpointfile.NewWatermarks(dataDir),
	}, nil
}

func (p *pipeline) dependencies() cli.Dependencies {
	return cli.Dependencies{
		Daily:    p.daily,
		States:   p.states,
		Congress: p.congress,
		Backfill: p.backfill,
		Orders:   p.orders,
		Status:   p.status,
		Lookup:   p.lookup,
	}
}

func (p *pipeline) connect() (*mongostore.DB, error) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		return nil, fmt.Errorf("%w: MONGODB_URI is not set", domain.ErrMissingCredentials)
	}
	dbName := os.Getenv("MONGODB_DB_NAME")
	if dbName == "" {
		dbName = p.settings.GetString("mongo.database", "statepulse")
	}
	return mongostore.Connect(context.Background(), uri, dbName)
}

// keyRing builds a rotation ring from the named environment variables,
// skipping unset backups. The primary is required.
func keyRing(names ...string) (*fetch.KeyRing, error) {
	var keys []string
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			keys = append(keys, v)
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %s is not set", domain.ErrMissingCredentials, names[0])
	}
	return fetch.NewKeyRing(keys), nil
}

func (p *pipeline) openStatesClient() (*openstates.Client, error) {
	keys, err := keyRing("OPENSTATES_API_KEY", "OPENSTATES_API_KEY_BACKUP_1", "OPENSTATES_API_KEY_BACKUP_2")
	if err != nil {
		return nil, err
	}
	fetcher := fetch.New(fetch.Options{
		RequestsPerSecond: p.settings.GetFloat("openstates.requests_per_second", 2),
		MaxThrottles:      p.settings.GetInt("openstates.max_throttles", fetch.DefaultMaxThrottles),
		Policy:            fetch.ThrottleRotate,
		Keys:              keys,
	})
	return openstates.NewClient("", fetcher, keys), nil
}

func (p *pipeline) congressClient(policy fetch.ThrottlePolicy) (*congress.Client, error) {
	keys, err := keyRing("US_CONGRESS_API_KEY", "US_CONGRESS_API_KEY_BACKUP_1", "US_CONGRESS_API_KEY_BACKUP_2")
	if err != nil {
		return nil, err
	}
	fetcher := fetch.New(fetch.Options{
		RequestsPerSecond: p.settings.GetFloat("congress.requests_per_second", 5),
		Policy:            policy,
		Keys:              keys,
	})
	return congress.NewClient("", fetcher, keys), nil
}

func (p *pipeline) whitehouseClient() *whitehouse.Client {
	fetcher := fetch.New(fetch.Options{
		RequestsPerSecond: p.settings.GetFloat("orders.requests_per_second", 2),
	})
	return whitehouse.NewClient("", fetcher)
}

// daily builds the full pipeline in its scheduled sweep order.
func (p *pipeline) daily(fromDate time.Time) (driving.Ingestor, error) {
	db, err := p.connect()
	if err != nil {
		return nil, err
	}
	osClient, err := p.openStatesClient()
	if err != nil {
		return nil, err
	}
	cgClient, err := p.congressClient(fetch.ThrottleRotate)
	if err != nil {
		return nil, err
	}
	backfillClient, err := p.congressClient(fetch.ThrottleFail)
	if err != nil {
		return nil, err
	}

	selected := openstates.SelectStates(p.settings.GetStringSlice("openstates.states"), "")

	adapters := []driven.SourceAdapter{
		openstates.NewBillsAdapter(osClient, db.Legislation(), p.checkpoints, p.statesOptions(selected, false)),
		congress.NewDailyAdapter(cgClient, db.Legislation(), p.checkpoints, p.congressOptions()),
		openstates.NewVotesAdapter(osClient, db.Votes(), db.Legislation(), selected),
		openstates.NewLegislatorsAdapter(osClient, db.Legislators(), selected),
		whitehouse.NewOrdersAdapter(p.whitehouseClient(), db.Orders(), p.ordersOptions(0)),
	}
	historical := congress.NewBackfillAdapter(backfillClient, db.Legislation(), p.checkpoints, p.backfillOptions(nil))

	orch := services.NewOrchestrator(adapters, historical, p.checkpoints, p.watermarks)
	orch.SinceOverride = fromDate
	return orch, nil
}

// states builds a state-legislation-only run that leaves the global
// watermark alone.
func (p *pipeline) states(targets []string, startFrom string) (driving.Ingestor, error) {
	db, err := p.connect()
	if err != nil {
		return nil, err
	}
	osClient, err := p.openStatesClient()
	if err != nil {
		return nil, err
	}

	selected := openstates.SelectStates(targets, startFrom)
	adapter := openstates.NewBillsAdapter(osClient, db.Legislation(), p.checkpoints,
		p.statesOptions(selected, startFrom != ""))

	orch := services.NewOrchestrator([]driven.SourceAdapter{adapter}, nil, p.checkpoints, p.watermarks)
	orch.SkipWatermark = true
	return orch, nil
}

// congress builds a federal-bills-only run that leaves the global
// watermark alone.
func (p *pipeline) congress(fromDate time.Time) (driving.Ingestor, error) {
	db, err := p.connect()
	if err != nil {
		return nil, err
	}
	client, err := p.congressClient(fetch.ThrottleRotate)
	if err != nil {
		return nil, err
	}

	adapter := congress.NewDailyAdapter(client, db.Legislation(), p.checkpoints, p.congressOptions())
	orch := services.NewOrchestrator([]driven.SourceAdapter{adapter}, nil, p.checkpoints, p.watermarks)
	orch.SkipWatermark = true
	orch.SinceOverride = fromDate
	return orch, nil
}

func (p *pipeline) backfill(sessions []int) (driving.Ingestor, error) {
	db, err := p.connect()
	if err != nil {
		return nil, err
	}
	client, err := p.congressClient(fetch.ThrottleFail)
	if err != nil {
		return nil, err
	}

	historical := congress.NewBackfillAdapter(client, db.Legislation(), p.checkpoints, p.backfillOptions(sessions))
	return services.NewOrchestrator(nil, historical, p.checkpoints, p.watermarks), nil
}

func (p *pipeline) orders(cutoff time.Time, maxPages int) (driving.Ingestor, error) {
	db, err := p.connect()
	if err != nil {
		return nil, err
	}

	adapter := whitehouse.NewOrdersAdapter(p.whitehouseClient(), db.Orders(), p.ordersOptions(maxPages))
	orch := services.NewOrchestrator([]driven.SourceAdapter{adapter}, adapter, p.checkpoints, p.watermarks)
	orch.SkipWatermark = true
	orch.SinceOverride = cutoff
	return orch, nil
}

// status builds the read-only view over the checkpoint files. No Mongo
// connection and no API keys: it reads nothing but the data directory.
func (p *pipeline) status() (driving.Ingestor, error) {
	return services.NewOrchestrator(nil, nil, p.checkpoints, p.watermarks), nil
}

// lookup resolves an ID against legislation first, then orders, and maps
// the hit into the common display shape.
func (p *pipeline) lookup(ctx context.Context, id string) (*domain.DisplayRecord, error) {
	db, err := p.connect()
	if err != nil {
		return nil, err
	}

	record, err := db.Legislation().Get(ctx, id)
	if err == nil {
		display := domain.DisplayFromLegislation(record)
		return &display, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	order, err := db.Orders().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	display := domain.DisplayFromExecutiveOrder(order)
	return &display, nil
}

func (p *pipeline) statesOptions(selected []openstates.State, ignoreCheckpoint bool) openstates.AdapterOptions {
	return openstates.AdapterOptions{
		States:           selected,
		IgnoreCheckpoint: ignoreCheckpoint,
		BatchSize:        p.settings.GetInt("pipeline.batch_size", sources.DefaultBatchSize),
		EarlyExitRatio:   p.settings.GetFloat("pipeline.early_exit_ratio", openstates.DefaultEarlyExitRatio),
	}
}

func (p *pipeline) congressOptions() congress.DailyOptions {
	return congress.DailyOptions{
		Congress:       p.settings.GetInt("congress.session", congress.CurrentCongress),
		PageSize:       p.settings.GetInt("congress.page_size", congress.DefaultDailyPageSize),
		MaxBills:       p.settings.GetInt("congress.max_bills", congress.DefaultMaxBills),
		BatchSize:      p.settings.GetInt("pipeline.batch_size", sources.DefaultBatchSize),
		EarlyExitRatio: p.settings.GetFloat("pipeline.early_exit_ratio", congress.DefaultEarlyExitRatio),
	}
}

func (p *pipeline) backfillOptions(sessions []int) congress.BackfillOptions {
	return congress.BackfillOptions{
		Sessions:      sessions,
		PageSize:      p.settings.GetInt("backfill.page_size", congress.MaxPageSize),
		BatchSize:     p.settings.GetInt("pipeline.batch_size", sources.DefaultBatchSize),
		RetryInterval: time.Duration(p.settings.GetInt("backfill.retry_minutes", 60)) * time.Minute,
		MaxRestarts:   p.settings.GetInt("backfill.max_restarts", congress.DefaultMaxRestarts),
		SessionPause:  congress.DefaultSessionPause,
	}
}

func (p *pipeline) ordersOptions(maxPages int) whitehouse.OrdersOptions {
	if maxPages == 0 {
		maxPages = p.settings.GetInt("orders.max_pages", whitehouse.DefaultMaxPages)
	}
	return whitehouse.OrdersOptions{
		MaxPages:     maxPages,
		CutoffBuffer: time.Duration(p.settings.GetInt("orders.cutoff_buffer_days", 7)) * 24 * time.Hour,
		Summariser:   summariser.NewNoop(),
	}
}
