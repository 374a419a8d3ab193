package e2e

import (
	"github.com/cucumber/godog"

	"ledgergate/e2e/steps/common"
	"ledgergate/e2e/steps/demo"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	demo.RegisterSteps(ctx, tc)
}
