package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yourorg/transitfr/internal/config"
	"github.com/yourorg/transitfr/internal/csvio"
	appdb "github.com/yourorg/transitfr/internal/db"
	"github.com/yourorg/transitfr/internal/models"
	"github.com/yourorg/transitfr/internal/otp"
	"github.com/yourorg/transitfr/internal/reconcile"
	"github.com/yourorg/transitfr/internal/regions"
	"github.com/yourorg/transitfr/internal/store"
)

func main() {
	_ = godotenv.Load()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Println("==== TransitFR CLI ====")
		fmt.Println("1) Health check API")
		fmt.Println("2) Run region check")
		fmt.Println("3) Export networks to CSV")
		fmt.Println("4) Import networks from CSV")
		fmt.Println("5) Exit")
		fmt.Print("Select option: ")
		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)
		switch choice {
		case "1":
			doHealthCheck()
		case "2":
			doRegionCheck(reader)
		case "3":
			doExport(reader)
		case "4":
			doImport(reader)
		case "5":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Invalid option")
		}
		fmt.Println()
	}
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	value, _ := reader.ReadString('\n')
	return strings.TrimSpace(value)
}

func doHealthCheck() {
	base := os.Getenv("BASE_URL")
	if base == "" {
		base = "http://127.0.0.1:3001"
	}
	url := strings.TrimRight(base, "/") + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		fmt.Println("Health: ERROR:", err)
		return
	}
	defer resp.Body.Close()
	fmt.Println("Health status:", resp.Status)
}

func openGateway() (*store.Store, *regions.Directory, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := appdb.Connect()
	if err != nil {
		return nil, nil, err
	}
	if err := appdb.EnsureSchema(db); err != nil {
		return nil, nil, err
	}
	if err := appdb.SeedRegions(db, cfg.Regions); err != nil {
		return nil, nil, err
	}
	return store.New(db), regions.NewDirectory(cfg.Regions), nil
}

func doRegionCheck(reader *bufio.Reader) {
	regionID := prompt(reader, "Region id (e.g. idf): ")
	if regionID == "" {
		fmt.Println("No region given")
		return
	}

	gateway, directory, err := openGateway()
	if err != nil {
		log.Println("Region check: setup error:", err)
		return
	}

	svc := reconcile.NewService(directory, gateway, func(r models.Region) reconcile.TransitAPI {
		return otp.NewClient(r, nil)
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := svc.CheckAllNetworks(ctx, regionID)
	if err != nil {
		log.Println("Region check:", err)
		return
	}
	fmt.Printf("Imported %d/%d operators, %d errors\n", result.Imported, result.Total, len(result.Errors))
	for _, e := range result.Errors {
		fmt.Println("  -", e)
	}
}

func doExport(reader *bufio.Reader) {
	path := prompt(reader, "Output file [networks.csv]: ")
	if path == "" {
		path = "networks.csv"
	}

	gateway, _, err := openGateway()
	if err != nil {
		log.Println("Export: setup error:", err)
		return
	}

	file, err := os.Create(path)
	if err != nil {
		log.Println("Export: create file:", err)
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := csvio.Export(ctx, gateway, file); err != nil {
		log.Println("Export:", err)
		return
	}
	fmt.Println("Exported to", path)
}

func doImport(reader *bufio.Reader) {
	path := prompt(reader, "Input file: ")
	if path == "" {
		fmt.Println("No file given")
		return
	}

	gateway, directory, err := openGateway()
	if err != nil {
		log.Println("Import: setup error:", err)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		log.Println("Import: open file:", err)
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	result, err := csvio.NewImporter(directory, gateway).Import(ctx, file)
	if err != nil {
		log.Println("Import:", err)
		return
	}
	fmt.Printf("Imported %d/%d rows, %d warnings\n", result.Imported, result.Total, len(result.Warnings))
	for _, w := range result.Warnings {
		fmt.Println("  -", w)
	}
}
