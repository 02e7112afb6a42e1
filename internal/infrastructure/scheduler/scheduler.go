// Package scheduler ejecuta el chequeo periódico de desvíos de la proyección de stock.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/bodega-stock/internal/application/inventory"
	"github.com/jhoicas/bodega-stock/pkg/logger"
)

// Reconciler lo que el chequeo necesita del motor de reconciliación.
type Reconciler interface {
	Drift(ctx context.Context) (*inventory.ReconcileResult, error)
	Rebuild(ctx context.Context) (*inventory.ReconcileResult, error)
}

// DriftJob compara la proyección con el log y, si repair está activo, reconstruye
// cuando encuentra desvíos.
type DriftJob struct {
	reconciler Reconciler
	repair     bool
	log        *logger.Logger
}

// NewDriftJob construye el job.
func NewDriftJob(r Reconciler, repair bool, log *logger.Logger) *DriftJob {
	return &DriftJob{reconciler: r, repair: repair, log: log.Named("scheduler.drift")}
}

// Run ejecuta una pasada. Devuelve el resultado del Drift (o del Rebuild si reparó).
func (j *DriftJob) Run(ctx context.Context) (*inventory.ReconcileResult, error) {
	res, err := j.reconciler.Drift(ctx)
	if err != nil {
		return nil, err
	}
	if res.IsDriftFree() {
		j.log.Debug().Int("pairs", res.Pairs).Msg("sin desvíos")
		return res, nil
	}
	for _, d := range res.Changed {
		j.log.Warn().
			Str("product_id", d.ProductID).
			Str("area", d.Area.String()).
			Str("stored", d.Stored.String()).
			Str("computed", d.Computed.String()).
			Msg("desvío de stock")
	}
	if !j.repair {
		return res, nil
	}
	return j.reconciler.Rebuild(ctx)
}

// Scheduler envuelve cron.Cron.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

// New registra el job con la expresión spec (5 campos o descriptores como @hourly).
func New(spec string, job *DriftJob, log *logger.Logger) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		if _, err := job.Run(context.Background()); err != nil {
			job.log.Error().Err(err).Msg("chequeo de desvíos")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("cron %q: %w", spec, err)
	}
	return &Scheduler{cron: c, log: log.Named("scheduler")}, nil
}

// Start inicia el cron en segundo plano.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler iniciado")
}

// Stop detiene el cron y espera a que termine el job en curso o a que ctx expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn().Msg("scheduler detenido con un job en curso")
	}
}
