package chain

import (
	"context"
	"fmt"

	"github.com/compose-network/orbit-audit/configs"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Connect dials the parent chain and, when configured, the orbit chain. The
// returned close function releases both connections.
func Connect(ctx context.Context, cfg configs.Config) (Chains, func(), error) {
	parentClient, err := Dial(ctx, cfg.Parent.RPCURL)
	if err != nil {
		return Chains{}, nil, fmt.Errorf("parent chain: %w", err)
	}
	clients := []*ethclient.Client{parentClient}
	closeAll := func() {
		for _, c := range clients {
			c.Close()
		}
	}

	chains := NewChains(NewReader(parentClient, LayerParent, readerOptions(cfg.Parent)...), nil)

	if cfg.HasOrbit() {
		orbitClient, err := Dial(ctx, cfg.Orbit.RPCURL)
		if err != nil {
			closeAll()
			return Chains{}, nil, fmt.Errorf("orbit chain: %w", err)
		}
		clients = append(clients, orbitClient)
		chains.Orbit = NewReader(orbitClient, LayerOrbit, readerOptions(cfg.Orbit)...)
	}

	return chains, closeAll, nil
}

func readerOptions(cfg configs.Chain) []Option {
	return []Option{
		WithMaxBlockRange(cfg.MaxBlockRange),
		WithFromBlock(cfg.FromBlock),
	}
}
