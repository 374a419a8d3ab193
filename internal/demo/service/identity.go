package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	ledger "ledgergate/internal/ledger/models"
	dErrors "ledgergate/pkg/domain-errors"
)

// ListOtherIdentities returns the primary names on the network map, in map
// order, without this node and without infrastructure service organisations.
func (s *Service) ListOtherIdentities(ctx context.Context) ([]ledger.X500Name, error) {
	var (
		snapshot []ledger.NodeInfo
		self     ledger.X500Name
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot, err = s.node.NetworkMapSnapshot(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		self, err = s.Self(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	others := make([]ledger.X500Name, 0, len(snapshot))
	for _, node := range snapshot {
		name, ok := node.PrimaryName()
		if !ok || name == self {
			continue
		}
		if _, service := s.serviceOrgs[name.Organisation]; service {
			continue
		}
		others = append(others, name)
	}
	if s.metrics != nil {
		s.metrics.SetPeersListed(len(others))
	}
	return others, nil
}

// Self returns the primary legal name of the connected node.
func (s *Service) Self(ctx context.Context) (ledger.X500Name, error) {
	info, err := s.node.NodeInfo(ctx)
	if err != nil {
		return ledger.X500Name{}, err
	}
	name, ok := info.PrimaryName()
	if !ok {
		return ledger.X500Name{}, dErrors.New(dErrors.CodeInternal, "node reported no legal identity")
	}
	return name, nil
}
