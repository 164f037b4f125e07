// Command repaircatalog rewrites products whose category or subcategory no
// longer matches the category collection. When REDIS_ADDR is set the cached
// copy of every rewritten product is dropped.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"storefront/internal/cache"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repair"
	"storefront/internal/shop"
	"storefront/internal/store"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report corrections without writing them")
	taxonomyFile := flag.String("taxonomy", "", "category seed file (defaults to TAXONOMY_FILE or the built-in seed)")
	flag.Parse()

	config.Load()
	if *taxonomyFile == "" {
		*taxonomyFile = config.AppEnv.TaxonomyFile
	}

	client, db, err := database.Connect(config.AppEnv.MongoURI, config.AppEnv.DBName)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	ctx := context.Background()
	st := store.NewMongo(db)
	svc := shop.New(st)

	seed, err := catalog.LoadSeed(*taxonomyFile)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := svc.SeedCategories(ctx, seed); err != nil {
		log.Fatal(err)
	}
	tax, err := svc.Taxonomy(ctx)
	if err != nil {
		log.Fatal(err)
	}

	runner := &repair.Runner{
		Products: st.Products,
		Taxonomy: tax,
		DryRun:   *dryRun,
	}
	if addr := config.AppEnv.RedisAddr; addr != "" {
		rdb := cache.NewClient(addr)
		defer rdb.Close()
		runner.Cache = cache.NewProducts(rdb, config.AppEnv.ProductCacheTTL)
	}
	sum, err := runner.Run(ctx)
	if err != nil {
		log.Println("[REPAIR] [ERROR]", err)
		_ = client.Disconnect(context.Background())
		os.Exit(1)
	}

	mode := "applied"
	if *dryRun {
		mode = "dry run"
	}
	log.Printf("[REPAIR] [INFO] %s: %s", mode, sum)
}
