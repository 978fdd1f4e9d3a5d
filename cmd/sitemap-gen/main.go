package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"luxe-estates.backend/internal/config"
	"luxe-estates.backend/pkg/sitemap"
)

type sitemapDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	now     func() time.Time
}

func runSitemapGen(args []string, deps sitemapDeps) (string, error) {
	if deps.loadEnv == nil {
		deps.loadEnv = func() error { return godotenv.Load() }
	}
	if deps.loadCfg == nil {
		deps.loadCfg = config.Load
	}
	if deps.now == nil {
		deps.now = time.Now
	}

	fs := flag.NewFlagSet("sitemap-gen", flag.ContinueOnError)
	outFlag := fs.String("out", "sitemap.xml", "output file")
	baseFlag := fs.String("base", "", "site origin (defaults to PUBLIC_SITE_URL)")
	if err := fs.Parse(args); err != nil {
		return "", err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	base := *baseFlag
	if base == "" {
		base = deps.loadCfg().Server.PublicSiteURL
	}

	f, err := os.Create(*outFlag)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", *outFlag, err)
	}
	defer f.Close()

	if err := sitemap.Write(f, base, sitemap.Routes, deps.now()); err != nil {
		return "", err
	}
	return *outFlag, nil
}

func main() {
	path, err := runSitemapGen(os.Args[1:], sitemapDeps{})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote %d routes to %s\n", len(sitemap.Routes), path)
}
