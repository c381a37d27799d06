package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/yourorg/transitfr/internal/models"
)

// Connect returns a MariaDB connection using env vars.
func Connect() (*sql.DB, error) {
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASS")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "3306"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4,utf8", user, pass, host, port, name)
	return sql.Open("mysql", dsn)
}

// EnsureSchema creates required tables if not exist.
func EnsureSchema(db *sql.DB) error {
	if skip := strings.TrimSpace(os.Getenv("DB_SKIP_SCHEMA")); strings.EqualFold(skip, "true") || skip == "1" {
		log.Printf("EnsureSchema: skipped (DB_SKIP_SCHEMA=%q)", skip)
		return nil
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS regions (
			id VARCHAR(32) PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			api_url VARCHAR(500) NOT NULL,
			is_active TINYINT(1) NOT NULL DEFAULT 1
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`); err != nil {
		return err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS networks (
			id VARCHAR(128) PRIMARY KEY,
			feed_id VARCHAR(64) NOT NULL,
			display_name VARCHAR(255) NULL,
			region_id VARCHAR(32) NOT NULL,
			is_available TINYINT(1) NOT NULL DEFAULT 0,
			last_check TIMESTAMP NULL,
			error_message VARCHAR(500) NULL,
			FOREIGN KEY (region_id) REFERENCES regions(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`); err != nil {
		return err
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS operators (
			id CHAR(36) PRIMARY KEY,
			network_id VARCHAR(128) NOT NULL,
			agency_id VARCHAR(128) NULL,
			name VARCHAR(255) NOT NULL,
			display_name VARCHAR(255) NULL,
			gtfs_id VARCHAR(128) NOT NULL,
			is_active TINYINT(1) NOT NULL DEFAULT 1,
			UNIQUE KEY uq_operator_network_gtfs (network_id, gtfs_id),
			FOREIGN KEY (network_id) REFERENCES networks(id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`); err != nil {
		return err
	}

	if _, err := db.Exec(`
		CREATE INDEX idx_networks_region ON networks(region_id);
	`); err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") {
			// index already exists, nothing to do
		} else if strings.Contains(errMsg, "permission denied") {
			log.Printf("EnsureSchema: unable to create networks index (permission denied): %v", err)
		} else {
			return err
		}
	}

	return nil
}

// SeedRegions inserts the region directory, leaving existing rows untouched.
func SeedRegions(db *sql.DB, regions []models.Region) error {
	stmt, err := db.Prepare(`
		INSERT IGNORE INTO regions (id, name, api_url, is_active)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("seed regions: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range regions {
		if _, err := stmt.Exec(r.ID, r.Name, r.APIURL, r.IsActive); err != nil {
			return fmt.Errorf("seed regions: insert %s: %w", r.ID, err)
		}
	}
	return nil
}
