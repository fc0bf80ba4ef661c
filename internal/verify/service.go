package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/compose-network/orbit-audit/configs"
	"github.com/compose-network/orbit-audit/internal/chain"
	"github.com/compose-network/orbit-audit/internal/deployment"
	"github.com/compose-network/orbit-audit/internal/report"
	"github.com/ethereum/go-ethereum/common"
)

// ErrWarningsFound is returned by verify-rollup when warnings are reported
// and verify.fail-on-warnings is set.
var ErrWarningsFound = errors.New("rollup verification reported warnings")

// Result is the outcome of verify-rollup.
type Result struct {
	Rollup   common.Address `json:"rollup" yaml:"rollup"`
	Warnings Warnings       `json:"warnings" yaml:"warnings"`
}

func (r Result) Table() report.Table {
	t := report.Table{Header: []string{"#", "Warning"}}
	if len(r.Warnings) == 0 {
		t.Rows = append(t.Rows, []string{"-", "No warnings."})
		return t
	}
	for i, w := range r.Warnings {
		t.Rows = append(t.Rows, []string{strconv.Itoa(i + 1), w})
	}
	return t
}

func start(ctx context.Context, stdout io.Writer, cfg configs.Config, rollupAddress common.Address) error {
	verifierCfg, err := newConfig(cfg.Verify)
	if err != nil {
		return err
	}

	chains, closeChains, err := chain.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeChains()

	warnings, err := NewVerifier(chains, verifierCfg).Verify(ctx, rollupAddress)
	if err != nil {
		return err
	}

	slog.
		With("rollup", rollupAddress.Hex()).
		With("warnings", len(warnings)).
		Info("rollup verified")

	result := Result{Rollup: rollupAddress, Warnings: warnings}
	if err := report.Emit(stdout, cfg.Output.Format, cfg.Output.File, result); err != nil {
		return err
	}

	if cfg.Verify.FailOnWarnings && len(warnings) > 0 {
		return fmt.Errorf("%w: %d", ErrWarningsFound, len(warnings))
	}
	return nil
}

// newConfig builds the verifier configuration, loading the deployment file
// when one is configured.
func newConfig(cfg configs.Verify) (Config, error) {
	verifierCfg := Config{
		MinConfirmPeriodBlocks: cfg.MinConfirmPeriodBlocks,
		ActivityWindow:         cfg.ActivityWindow,
		FallbackActivityBlocks: cfg.FallbackActivityBlocks,
	}

	if creator, ok := cfg.TokenBridgeCreatorAddress(); ok {
		verifierCfg.TokenBridgeCreator = &creator
	}

	if cfg.DeploymentFile != "" {
		record, err := deployment.NewReader().ReadRecord(cfg.DeploymentFile)
		if err != nil {
			return Config{}, err
		}
		verifierCfg.Deployment = record
	}

	return verifierCfg, nil
}
