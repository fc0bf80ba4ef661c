package contracts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abis/rollup_creator.json
var creatorABIFS embed.FS

// CreatorVersion identifies a RollupCreator release whose createRollup input
// layout differs from the others.
type CreatorVersion string

const (
	CreatorV1_1   CreatorVersion = "v1.1"
	CreatorV1_0   CreatorVersion = "v1.0"
	CreatorLegacy CreatorVersion = "legacy"
)

// CreatorVersions lists the known layouts, newest first. Decoders try them in
// this order.
var CreatorVersions = []CreatorVersion{CreatorV1_1, CreatorV1_0, CreatorLegacy}

// CreateRollupMethod is the createRollup method of one RollupCreator release.
type CreateRollupMethod struct {
	Version CreatorVersion
	Method  abi.Method
}

var (
	creatorOnce    sync.Once
	creatorMethods []CreateRollupMethod
	creatorErr     error
)

// LoadCreateRollupMethods returns the createRollup methods of every known
// RollupCreator release in CreatorVersions order.
func LoadCreateRollupMethods() ([]CreateRollupMethod, error) {
	creatorOnce.Do(func() {
		data, err := creatorABIFS.ReadFile("abis/rollup_creator.json")
		if err != nil {
			creatorErr = fmt.Errorf("failed to read embedded rollup creator ABIs: %w", err)
			return
		}
		creatorMethods, creatorErr = parseCreatorABIs(data)
	})

	return creatorMethods, creatorErr
}

// parseCreatorABIs parses the per-version ABI document.
func parseCreatorABIs(data []byte) ([]CreateRollupMethod, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse rollup creator ABIs: %w", err)
	}

	methods := make([]CreateRollupMethod, 0, len(CreatorVersions))
	for _, version := range CreatorVersions {
		doc, ok := raw[string(version)]
		if !ok {
			return nil, fmt.Errorf("rollup creator ABI %s missing", version)
		}

		parsed, err := abi.JSON(bytes.NewReader(doc))
		if err != nil {
			return nil, fmt.Errorf("failed to parse rollup creator ABI %s: %w", version, err)
		}

		method, ok := parsed.Methods["createRollup"]
		if !ok {
			return nil, fmt.Errorf("rollup creator ABI %s has no createRollup", version)
		}

		methods = append(methods, CreateRollupMethod{Version: version, Method: method})
	}

	return methods, nil
}
