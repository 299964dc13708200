package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/holiman/uint256"
	"github.com/vocdoni/davinci-das/codec"
	"github.com/vocdoni/davinci-das/config"
	"github.com/vocdoni/davinci-das/das"
	"github.com/vocdoni/davinci-das/log"
	"github.com/vocdoni/davinci-das/types"
	"github.com/vocdoni/davinci-das/util"
)

const (
	blobSize           = types.BlobLength
	defaultSetupOut    = "trusted_setup_insecure.json"
	defaultArtifactOut = "cells.cbor"
)

// insecureSecret parses the configured secret, nil meaning the default one.
func insecureSecret(cfg *Config) (*uint256.Int, error) {
	if cfg.Setup.Secret == "" {
		return nil, nil
	}
	secret, err := uint256.FromDecimal(cfg.Setup.Secret)
	if err != nil {
		return nil, fmt.Errorf("invalid setup secret: %w", err)
	}
	return secret, nil
}

func newContext(cfg *Config) (*das.Context, error) {
	opts := []das.Option{das.WithWorkers(cfg.Workers)}
	switch {
	case cfg.Setup.Path != "":
		return das.NewFromFile(cfg.Setup.Path, opts...)
	case cfg.Setup.Insecure:
		secret, err := insecureSecret(cfg)
		if err != nil {
			return nil, err
		}
		log.Warnw("using an insecure trusted setup, proofs can be forged")
		return das.NewInsecure(secret, opts...)
	default:
		return nil, fmt.Errorf("a trusted setup is required (--setup.path or DAS_SETUP_PATH), or --setup.insecure for development")
	}
}

func outputPath(cfg *Config, def string) string {
	if cfg.Out != "" {
		return cfg.Out
	}
	return def
}

func defaultEncodingOf(cfg *Config) codec.Encoding {
	// validated by validateConfig
	enc, _ := codec.ParseEncoding(cfg.Encoding)
	return enc
}

// readBlob loads a blob from a raw file or from its hex encoding.
func readBlob(path string) (*types.Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == blobSize {
		return types.NewBlobFromBytes(data)
	}
	decoded, err := types.HexStringToHexBytes(string(data))
	if err != nil {
		return nil, fmt.Errorf("blob is neither %d raw bytes nor hex: %w", blobSize, err)
	}
	return types.NewBlobFromBytes(decoded)
}

func readBundle(cfg *Config, path string) (*types.CellBundle, error) {
	bundle := &types.CellBundle{}
	if err := codec.ReadFile(path, bundle, defaultEncodingOf(cfg)); err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return bundle, nil
}

func runSetup(cfg *Config) error {
	if !cfg.Setup.Insecure {
		return fmt.Errorf("only insecure setups can be generated, pass --setup.insecure")
	}
	secret, err := insecureSecret(cfg)
	if err != nil {
		return err
	}
	setup, err := config.InsecureTrustedSetup(secret)
	if err != nil {
		return err
	}
	data, err := codec.EncodeJSON(setup)
	if err != nil {
		return err
	}
	out := outputPath(cfg, defaultSetupOut)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	log.Infow("insecure trusted setup written", "file", out)
	return nil
}

func runCommit(dasCtx *das.Context, path string) error {
	blob, err := readBlob(path)
	if err != nil {
		return err
	}
	commitment, err := dasCtx.BlobToKZGCommitment(blob)
	if err != nil {
		return err
	}
	fmt.Printf("commitment:     0x%s\n", commitment)
	fmt.Printf("versioned hash: %s\n", commitment.VersionedHash())
	return nil
}

func runCells(ctx context.Context, cfg *Config, dasCtx *das.Context, path string) error {
	blob, err := readBlob(path)
	if err != nil {
		return err
	}
	commitmentF := dasCtx.BlobToKZGCommitmentAsync(blob)
	cellsF := dasCtx.ComputeCellsAndKZGProofsAsync(blob)
	commitment, err := commitmentF.Wait(ctx)
	if err != nil {
		return err
	}
	res, err := cellsF.Wait(ctx)
	if err != nil {
		return err
	}

	bundle := &types.CellBundle{
		Commitment:  commitment,
		CellIndices: make([]uint64, len(res.Cells)),
		Cells:       res.Cells,
		Proofs:      res.Proofs,
	}
	for i := range bundle.CellIndices {
		bundle.CellIndices[i] = uint64(i)
	}
	out := outputPath(cfg, defaultArtifactOut)
	if err := codec.WriteFile(out, bundle, defaultEncodingOf(cfg)); err != nil {
		return err
	}
	log.Infow("cells written", "file", out, "cells", bundle.Len(), "commitment", commitment.String())
	return nil
}

func runVerify(ctx context.Context, cfg *Config, dasCtx *das.Context, path string) error {
	bundle, err := readBundle(cfg, path)
	if err != nil {
		return err
	}
	// every cell of the artifact belongs to its single row
	rows := make([]uint64, bundle.Len())
	valid, err := dasCtx.VerifyCellKZGProofBatchAsync(
		[]types.KZGCommitment{bundle.Commitment},
		rows, bundle.CellIndices, bundle.Cells, bundle.Proofs,
	).Wait(ctx)
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("invalid cell proofs in %s", path)
	}
	fmt.Printf("%d cells valid\n", bundle.Len())
	return nil
}

func runRecover(ctx context.Context, cfg *Config, dasCtx *das.Context, path string) error {
	bundle, err := readBundle(cfg, path)
	if err != nil {
		return err
	}
	if cfg.Drop > 0 {
		keep := make(map[uint64]bool)
		n := bundle.Len() - bundle.Len()*cfg.Drop/100
		for _, i := range util.RandomSubset(bundle.Len(), n) {
			keep[bundle.CellIndices[i]] = true
		}
		bundle = bundle.Keep(func(idx uint64) bool { return keep[idx] })
		log.Infow("dropped cells", "kept", bundle.Len(), "missing", missing(bundle.CellIndices))
	}

	res, err := dasCtx.RecoverCellsAndKZGProofsAsync(bundle.CellIndices, bundle.Cells).Wait(ctx)
	if err != nil {
		return err
	}
	full := &types.CellBundle{
		Commitment:  bundle.Commitment,
		CellIndices: make([]uint64, len(res.Cells)),
		Cells:       res.Cells,
		Proofs:      res.Proofs,
	}
	for i := range full.CellIndices {
		full.CellIndices[i] = uint64(i)
	}
	rows := make([]uint64, full.Len())
	valid, err := dasCtx.VerifyCellKZGProofBatch([]types.KZGCommitment{full.Commitment},
		rows, full.CellIndices, full.Cells, full.Proofs)
	if err != nil {
		return err
	}
	if !valid {
		return fmt.Errorf("recovered cells do not match commitment %s", full.Commitment)
	}
	out := outputPath(cfg, defaultArtifactOut)
	if err := codec.WriteFile(out, full, defaultEncodingOf(cfg)); err != nil {
		return err
	}
	log.Infow("recovered cells written", "file", out, "from", bundle.Len())
	return nil
}

// missing returns a compact description of the columns not in indices.
func missing(indices []uint64) string {
	var out []string
	for i := range uint64(das.CellsPerExtBlob) {
		if !slices.Contains(indices, i) {
			out = append(out, fmt.Sprint(i))
		}
	}
	return strings.Join(out, ",")
}
