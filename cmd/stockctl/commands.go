package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/bodega-stock/internal/application/inventory"
	"github.com/jhoicas/bodega-stock/internal/infrastructure/postgres"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Aplicar o revertir el esquema embebido",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := postgres.MigrateDirection(args[0])
			if dir != postgres.MigrateUp && dir != postgres.MigrateDown {
				return fmt.Errorf("dirección inválida %q (up|down)", args[0])
			}
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			version, err := postgres.Migrate(cfg.DB.ConnectionString(), dir)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), map[string]interface{}{"direction": dir, "version": version},
				fmt.Sprintf("migrate %s: versión %d", dir, version))
		},
	}
}

func rebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Reconstruir inventory_stock desde inventory_movements",
		Long: `Recalcula cada par (producto, área) con historia: último ajuste como base,
más ingresos y menos salidas posteriores, con piso en cero. Corre en una sola
transacción con la tabla de stock bloqueada.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			res, err := a.reconcile.Rebuild(ctx)
			if err != nil {
				return err
			}
			return printReconcile(cmd.OutOrStdout(), res)
		}),
	}
}

func driftCmd() *cobra.Command {
	var failOnDrift bool
	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Listar pares cuyo stock difiere del log (no escribe)",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			res, err := a.reconcile.Drift(ctx)
			if err != nil {
				return err
			}
			if err := printReconcile(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if failOnDrift && !res.IsDriftFree() {
				return fmt.Errorf("%d pares con desvío", len(res.Changed))
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&failOnDrift, "fail", false, "salir con error si hay desvíos")
	return cmd
}

func moveAllCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "move-all-to-bodega",
		Short: "Sumar todo el surtido a bodega y eliminar las filas de surtido",
		Args:  cobra.NoArgs,
		PreRunE: func(*cobra.Command, []string) error {
			if !yes {
				return fmt.Errorf("operación irreversible: confirme con --yes")
			}
			return nil
		},
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
			res, err := a.migration.MoveAllToBodega(ctx, actorID)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res,
				fmt.Sprintf("%d productos, %s unidades movidas a bodega, %d filas de surtido eliminadas",
					res.Products, res.Quantity, res.DeletedRows))
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirmar la migración")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Importar stock y movimientos históricos desde un JSON",
		Long: `El archivo tiene la forma {"inventory_stock": [...], "inventory_movements": [...]}.
Las filas con SKU desconocido, área o tipo inválidos o cantidad negativa se omiten
y se listan en el resultado.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			in, err := readImportFile(args[0])
			if err != nil {
				return err
			}
			in.ActorID = actorID
			res, err := a.importer.Import(ctx, *in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, res)
			}
			fmt.Fprintf(out, "stock: %d filas, movimientos: %d, omitidas: %d\n", res.Stock, res.Movements, len(res.Skipped))
			for _, s := range res.Skipped {
				fmt.Fprintf(out, "  %s[%d] %s: %s\n", s.Kind, s.Index, s.SKU, s.Reason)
			}
			if res.Rebuild != nil {
				fmt.Fprintf(out, "reconstrucción: %d pares, %d cambiados\n", res.Rebuild.Pairs, len(res.Rebuild.Changed))
			}
			return nil
		}),
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <sku> <area>",
		Short: "Reproducir la historia de un par y compararla con el stock guardado",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			v, err := a.reconcile.VerifyPair(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			status := "OK"
			if !v.Consistent {
				status = "DESVÍO"
			}
			return printResult(cmd.OutOrStdout(), v,
				fmt.Sprintf("%s/%s: %d movimientos, guardado %s, réplica %s, proyección %s [%s]",
					v.SKU, v.Area, v.Movements, v.Stored, v.Replayed, v.Projected, status))
		}),
	}
}

// withApp abre la conexión antes del comando y la cierra al terminar.
func withApp(run func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return run(ctx, a, cmd, args)
	}
}

func readImportFile(path string) (*inventory.ImportInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir %s: %w", path, err)
	}
	defer f.Close()
	return decodeImport(f)
}

func decodeImport(r io.Reader) (*inventory.ImportInput, error) {
	var in inventory.ImportInput
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("archivo de importación: %w", err)
	}
	return &in, nil
}

func printReconcile(w io.Writer, res *inventory.ReconcileResult) error {
	if jsonOutput {
		return printJSON(w, res)
	}
	mode := "reconstrucción"
	if res.DryRun {
		mode = "desvíos"
	}
	fmt.Fprintf(w, "%s: %d pares, %d con diferencia\n", mode, res.Pairs, len(res.Changed))
	for _, d := range res.Changed {
		fmt.Fprintf(w, "  %s/%s guardado=%s calculado=%s\n", d.ProductID, d.Area, d.Stored, d.Computed)
	}
	return nil
}

func printResult(w io.Writer, v interface{}, text string) error {
	if jsonOutput {
		return printJSON(w, v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
