package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"catedrahub/internal/importer"
	"catedrahub/pkg/database"
	"catedrahub/pkg/models"
)

func main() {
	var (
		dryRun         = flag.Bool("dry-run", false, "process the file but roll back all changes")
		updateExisting = flag.Bool("update-existing", false, "update comisiones that already exist")
		ciclo          = flag.String("ciclo", "", "ciclo to tag imported comisiones with (CPO or CPC)")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <archivo.csv|.xls|.xlsx>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	cicloTag := strings.ToUpper(strings.TrimSpace(*ciclo))
	if cicloTag != "" && !models.ValidCiclo(cicloTag) {
		log.Fatalf("invalid ciclo %q: must be CPO or CPC", *ciclo)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	engine := importer.NewEngine(db)
	result, err := engine.Run(ctx, importer.Options{
		Path:           path,
		DryRun:         *dryRun,
		UpdateExisting: *updateExisting,
		Ciclo:          cicloTag,
	})
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	result.PrintSummary(os.Stdout)
}
