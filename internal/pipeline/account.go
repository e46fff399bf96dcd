package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/fieldeval/internal/predict"
	"github.com/agentstation/fieldeval/internal/source"
	"github.com/agentstation/fieldeval/internal/store"
	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/logging"
	"github.com/agentstation/fieldeval/pkg/metrics"
	"github.com/agentstation/fieldeval/pkg/reconcile"
	"github.com/agentstation/fieldeval/pkg/record"
	"github.com/agentstation/fieldeval/pkg/report"
)

// account runs every step for one account file, recording the first
// failure on acct.
func (r *Runner) account(ctx context.Context, plan Plan, batch string, instances source.Instances, acct *Account) {
	started := time.Now()

	tenant, err := r.files.LookupTenant(r.paths.AccountsCSV, plan.FileTypeID, acct.File)
	if err != nil {
		acct.Err = err
		return
	}
	acct.TenantID = tenant
	ctx = logging.WithTenant(ctx, tenant)
	logger := logging.FromContext(ctx)

	runDir := filepath.Join(r.paths.Output, plan.FileTypeID, tenant)
	instance, err := instances.Find(tenant)
	if err != nil {
		acct.Err = err
		return
	}
	gtPath := filepath.Join(runDir, constants.GroundTruthFile)
	if err := r.files.WriteJSON(gtPath, instance); err != nil {
		acct.Err = err
		return
	}

	if err := r.upload(ctx, plan, acct); err != nil {
		acct.Err = err
		return
	}

	info, err := r.files.FindTenantInfo(r.paths.TenantInfo, tenant)
	if err != nil {
		acct.Err = err
		return
	}
	req := predict.Request{
		GlobalTenantID:    globalTenantID(info, tenant),
		FileTypeID:        plan.FileTypeID,
		IntegrationID:     acct.IntegrationID,
		TenantInformation: info,
	}

	resp, err := r.predictor.Predict(ctx, req)
	if err != nil {
		acct.Err = errors.WrapResource("fetch", "prediction", tenant, err)
		return
	}
	r.recordTiming(ctx, plan.FileTypeID, req.GlobalTenantID, resp.Duration)

	predPath := filepath.Join(runDir, constants.PredictionFile)
	if err := r.files.WriteJSON(predPath, resp.Prediction); err != nil {
		acct.Err = err
		return
	}

	if plan.Local && r.local != nil {
		if lresp, err := r.local.Predict(ctx, req); err != nil {
			logger.Warn().Err(err).Msg("Local prediction failed")
		} else {
			logger.Info().Dur("duration", lresp.Duration).Msg("Local prediction completed")
		}
	}

	result, err := r.reconcile(ctx, gtPath, predPath, instances)
	if err != nil {
		acct.Err = err
		return
	}
	acct.Result = result

	acct.Report = filepath.Join(runDir, constants.CoverageReportPrefix+tenant+".csv")
	if err := r.writeReport(acct.Report, result); err != nil {
		acct.Err = err
		return
	}

	if r.runs != nil {
		run := &store.Run{
			BatchID:       batch,
			TenantID:      tenant,
			FileTypeID:    plan.FileTypeID,
			AccountFile:   acct.File,
			IntegrationID: acct.IntegrationID,
			StartedAt:     started.UTC(),
			Duration:      time.Since(started),
			Fields:        len(result.Rows),
			JudgeCalls:    result.Metadata.JudgeCalls,
			Metrics:       result.Metrics,
		}
		if err := r.runs.Save(ctx, run); err != nil {
			logger.Warn().Err(err).Msg("Failed to record run history")
		}
	}

	if len(result.Metrics) > 0 {
		m := result.Metrics[0]
		logger.Info().
			Str("coverage", metrics.Percent(m.Coverage)).
			Str("accuracy", metrics.Percent(m.Accuracy)).
			Int("extra_fields", m.ExtraFields).
			Msg("Account evaluated")
	}
}

func (r *Runner) upload(ctx context.Context, plan Plan, acct *Account) error {
	if r.uploader == nil {
		return nil
	}
	src := filepath.Join(r.paths.InstancesRoot, plan.FileTypeID, acct.File)
	f, err := r.files.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	prefix := r.prefix
	if prefix == "" {
		prefix = uuid.NewString()
	}
	name := strings.Join([]string{prefix, plan.FileTypeID, acct.IntegrationID}, "_") + filepath.Ext(acct.File)
	return r.uploader.Upload(ctx, predict.Upload{
		Name:   name,
		Bucket: r.bucket,
		Prefix: "account_structure",
		Body:   f,
	})
}

func (r *Runner) reconcile(ctx context.Context, gtPath, predPath string, instances source.Instances) (*reconcile.Result, error) {
	ref, err := r.files.LoadReference(gtPath)
	if err != nil {
		return nil, err
	}
	cand, err := r.files.LoadCandidate(predPath)
	if err != nil {
		return nil, err
	}
	return r.reconciler.Run(ctx, reconcile.Input{
		Reference:  ref,
		Candidates: []*record.Record{cand},
		Catalogue:  instances.Catalogue(),
	})
}

func (r *Runner) recordTiming(ctx context.Context, fileType, tenant string, d time.Duration) {
	if r.paths.TimingLog == "" {
		return
	}
	logger := logging.FromContext(ctx)
	if err := r.files.Fs().MkdirAll(filepath.Dir(r.paths.TimingLog), constants.DirPermissions); err != nil {
		logger.Warn().Err(err).Msg("Failed to create timing log directory")
		return
	}
	log := report.NewTimingLog(r.files.Fs(), r.paths.TimingLog)
	err := log.Record(report.Timing{At: time.Now(), FileTypeID: fileType, TenantID: tenant, Duration: d})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to record prediction timing")
	}
}

// globalTenantID reads globalTenantId from the tenant information, falling
// back to the local tenant ID.
func globalTenantID(info any, fallback string) string {
	if m, ok := info.(map[string]any); ok {
		if id, ok := m["globalTenantId"].(string); ok && id != "" {
			return id
		}
	}
	return fallback
}
