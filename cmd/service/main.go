package main

import (
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vocdoni/api-migrations/api"
	"github.com/vocdoni/api-migrations/apiversions"
	"github.com/vocdoni/api-migrations/db"
	"github.com/vocdoni/api-migrations/migrations"
	"github.com/vocdoni/api-migrations/transforms"
	"go.vocdoni.io/dvote/log"
)

func main() {
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 8080, "listen port")
	flag.StringP("secret", "s", "", "API secret")
	flag.String("mongo-url", "", "The URL of the MongoDB server")
	flag.String("mongo-db", "api-migrations", "The name of the MongoDB database")
	flag.String("migrations-file", "", "YAML file with the API versions, replaces the built-in history")
	flag.Bool("strict-versions", false, "reject requests that declare an unknown API version")
	flag.Int("client-cache-size", 1024, "number of client version pins kept in memory")
	flag.String("log-level", "info", "log level (debug, info, warn, error)")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix("VOCDONI")
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	log.Init(viper.GetString("log-level"), "stdout", nil)
	// read the configuration
	host := viper.GetString("host")
	port := viper.GetInt("port")
	secret := viper.GetString("secret")
	if secret == "" {
		log.Fatal("secret is required")
	}
	mongoURL := viper.GetString("mongo-url")
	mongoDB := viper.GetString("mongo-db")
	// load the version history of the API
	registry, err := loadRegistry(viper.GetString("migrations-file"))
	if err != nil {
		log.Fatalf("could not load the API versions: %v", err)
	}
	log.Infow("API versions loaded", "latest", registry.Latest().Number,
		"versions", len(registry.SortedVersions()), "migrations", len(registry.Migrations()))
	// initialize the MongoDB database
	database, err := db.New(mongoURL, mongoDB)
	if err != nil {
		log.Fatalf("could not create the MongoDB database: %v", err)
	}
	defer database.Close()
	// create the local API server
	server, err := api.New(&api.Config{
		Host:            host,
		Port:            port,
		Secret:          secret,
		DB:              database,
		Registry:        registry,
		StrictVersions:  viper.GetBool("strict-versions"),
		ClientCacheSize: viper.GetInt("client-cache-size"),
	})
	if err != nil {
		log.Fatalf("could not create the API: %v", err)
	}
	server.Start()
	// wait forever, as the server is running in a goroutine
	log.Infow("server started", "host", host, "port", port)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}

// loadRegistry reads the registry from the given YAML file, or builds the
// built-in history if path is empty.
func loadRegistry(path string) (*migrations.Registry, error) {
	if path == "" {
		return apiversions.New()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	registry, err := transforms.LoadRegistry(f)
	if err != nil {
		return nil, err
	}
	if registry.Latest() == nil {
		return nil, migrations.ErrEmptyRegistry
	}
	registry.Freeze()
	return registry, nil
}
