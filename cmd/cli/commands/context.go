package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/kiddos/scheduler/internal/config"
	"github.com/kiddos/scheduler/pkg/clients/sheetsclient"
	"github.com/kiddos/scheduler/pkg/core/services"
	"github.com/kiddos/scheduler/pkg/core/solver"
	"github.com/kiddos/scheduler/pkg/db"
	"github.com/kiddos/scheduler/pkg/metrics"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg          *config.Config
	SheetsClient *sheetsclient.Client
	Database     db.Database
	Backend      solver.Backend
	Metrics      *metrics.Recorder
	Runner       *services.Runner
	Logger       *zap.Logger
	Ctx          context.Context
}
