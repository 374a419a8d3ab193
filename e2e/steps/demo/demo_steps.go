package demo

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/cucumber/godog"

	"ledgergate/internal/demo/models"
	ledger "ledgergate/internal/ledger/models"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	DecodeResponse(v any) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetLastTransactionID() string
	SetLastTransactionID(id string)
}

var transactionIDPattern = regexp.MustCompile(`^[0-9A-F]{64}$`)

// RegisterSteps registers demo endpoint step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &demoSteps{tc: tc}

	// Workflow steps
	ctx.Step(`^I say hello to the next counterparty$`, steps.sayHello)
	ctx.Step(`^hello has been said (\d+) times?$`, steps.helloSaidTimes)
	ctx.Step(`^the response should be a transaction id$`, steps.responseShouldBeTransactionID)
	ctx.Step(`^each transaction id should be distinct$`, steps.transactionIDsDistinct)

	// Query steps
	ctx.Step(`^I request hello page (-?\d+)$`, steps.requestPage)
	ctx.Step(`^the response should list at least (\d+) greetings?$`, steps.responseListsGreetings)
	ctx.Step(`^every greeting should be unconsumed$`, steps.everyGreetingUnconsumed)

	// Identity steps
	ctx.Step(`^the response should report the node identity$`, steps.responseReportsIdentity)
	ctx.Step(`^the node list should not include "([^"]*)"$`, steps.nodeListExcludes)
	ctx.Step(`^the node list should not include the node itself$`, steps.nodeListExcludesSelf)
}

type demoSteps struct {
	tc           TestContext
	transactions []string
	greetings    []models.HelloBO
	nodes        []ledger.X500Name
}

func (s *demoSteps) sayHello(ctx context.Context) error {
	if err := s.tc.GET("/demo/sayHelloTo", nil); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() == 200 {
		id := string(s.tc.GetLastResponseBody())
		s.tc.SetLastTransactionID(id)
		s.transactions = append(s.transactions, id)
	}
	return nil
}

func (s *demoSteps) helloSaidTimes(ctx context.Context, n int) error {
	for range n {
		if err := s.sayHello(ctx); err != nil {
			return err
		}
		if status := s.tc.GetLastResponseStatus(); status != 200 {
			return fmt.Errorf("say hello answered %d: %s", status, string(s.tc.GetLastResponseBody()))
		}
	}
	return nil
}

func (s *demoSteps) responseShouldBeTransactionID(ctx context.Context) error {
	id := s.tc.GetLastTransactionID()
	if !transactionIDPattern.MatchString(id) {
		return fmt.Errorf("expected a transaction id but got %q", string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *demoSteps) transactionIDsDistinct(ctx context.Context) error {
	seen := make(map[string]struct{}, len(s.transactions))
	for _, id := range s.transactions {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("transaction id %s returned twice", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (s *demoSteps) requestPage(ctx context.Context, page int) error {
	if err := s.tc.GET(fmt.Sprintf("/demo/getAllHello/%d", page), nil); err != nil {
		return err
	}
	s.greetings = nil
	if s.tc.GetLastResponseStatus() == 200 {
		return s.tc.DecodeResponse(&s.greetings)
	}
	return nil
}

func (s *demoSteps) responseListsGreetings(ctx context.Context, n int) error {
	if len(s.greetings) < n {
		return fmt.Errorf("expected at least %d greetings but got %d", n, len(s.greetings))
	}
	for _, g := range s.greetings {
		if !strings.HasPrefix(g.Message, "Hello ") || g.LinearID == "" {
			return fmt.Errorf("unexpected greeting %+v", g)
		}
	}
	return nil
}

func (s *demoSteps) everyGreetingUnconsumed(ctx context.Context) error {
	for _, g := range s.greetings {
		if g.Status != ledger.StatusUnconsumed {
			return fmt.Errorf("greeting %s has status %s", g.LinearID, g.Status)
		}
	}
	return nil
}

func (s *demoSteps) responseReportsIdentity(ctx context.Context) error {
	var body map[string]ledger.X500Name
	if err := s.tc.DecodeResponse(&body); err != nil {
		return err
	}
	me, ok := body[models.KeyMe]
	if !ok || me.Organisation == "" {
		return fmt.Errorf("no identity under %q in %s", models.KeyMe, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *demoSteps) loadNodes() error {
	var body map[string][]ledger.X500Name
	if err := s.tc.DecodeResponse(&body); err != nil {
		return err
	}
	nodes, ok := body[models.KeyAllNodes]
	if !ok {
		return fmt.Errorf("no %q key in %s", models.KeyAllNodes, string(s.tc.GetLastResponseBody()))
	}
	s.nodes = nodes
	return nil
}

func (s *demoSteps) nodeListExcludes(ctx context.Context, organisation string) error {
	if err := s.loadNodes(); err != nil {
		return err
	}
	for _, n := range s.nodes {
		if n.Organisation == organisation {
			return fmt.Errorf("node list includes %s", n)
		}
	}
	return nil
}

func (s *demoSteps) nodeListExcludesSelf(ctx context.Context) error {
	if err := s.loadNodes(); err != nil {
		return err
	}
	nodes := s.nodes
	if err := s.tc.GET("/demo/me", nil); err != nil {
		return err
	}
	var body map[string]ledger.X500Name
	if err := s.tc.DecodeResponse(&body); err != nil {
		return err
	}
	for _, n := range nodes {
		if n == body[models.KeyMe] {
			return fmt.Errorf("node list includes the node itself (%s)", n)
		}
	}
	return nil
}
