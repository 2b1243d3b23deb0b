package main

import (
	"context"
	"time"

	"Fluxo/internal/domain/recurring"
	"Fluxo/internal/domain/staging"
	appfx "Fluxo/internal/fx"
	"Fluxo/internal/logger"

	"go.uber.org/fx"
)

const passTimeout = 10 * time.Minute

// Executa uma passada de lancamentos fixos e de reconciliacao para todos os
// usuarios e encerra. Pensado para rodar via cron.
func main() {
	fx.New(
		appfx.WorkerModule,
		fx.Invoke(runPass),
	).Run()
}

func runPass(lc fx.Lifecycle, shutdowner fx.Shutdowner, recurringSvc *recurring.Service, stagingSvc *staging.Service) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				exitCode := 0
				if err := pass(recurringSvc, stagingSvc); err != nil {
					logger.Error().Err(err).Msg("Passada do worker falhou")
					exitCode = 1
				}
				if err := shutdowner.Shutdown(fx.ExitCode(exitCode)); err != nil {
					logger.Error().Err(err).Msg("Falha ao encerrar worker")
				}
			}()
			return nil
		},
	})
}

func pass(recurringSvc *recurring.Service, stagingSvc *staging.Service) error {
	ctx, cancel := context.WithTimeout(context.Background(), passTimeout)
	defer cancel()

	start := time.Now()
	users, err := recurringSvc.MaterializeAll(ctx)
	if err != nil {
		return err
	}
	logger.Info().Int("users", users).Msg("Lancamentos fixos processados")

	reconciled, err := stagingSvc.ReconcileAll(ctx)
	if err != nil {
		return err
	}
	logger.Info().
		Int("rows", reconciled).
		Dur("elapsed", time.Since(start)).
		Msg("Reconciliacao de itens aprovados concluida")
	return nil
}
