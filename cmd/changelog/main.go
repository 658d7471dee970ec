package main

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vocdoni/api-migrations/apiversions"
	"github.com/vocdoni/api-migrations/changelog"
	"go.vocdoni.io/dvote/log"
)

func main() {
	log.Init("info", "stderr", nil)
	// define flags
	flag.StringP("format", "f", changelog.FormatMarkdown, "output format (markdown, html, json)")
	flag.Bool("publish", false, "upload the changelog to the bucket instead of printing it")
	flag.String("key", "", "object key of the published changelog (default changelog.<ext>)")
	flag.String("s3-endpoint", "", "S3 compatible endpoint, empty for AWS")
	flag.String("s3-region", "us-east-1", "S3 region")
	flag.String("s3-bucket", "", "S3 bucket")
	flag.String("s3-access-key", "", "S3 access key")
	flag.String("s3-secret-key", "", "S3 secret key")
	flag.Bool("s3-path-style", false, "use path style bucket addressing")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix("VOCDONI")
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()

	registry, err := apiversions.New()
	if err != nil {
		log.Fatalf("could not load the API versions: %v", err)
	}
	cl := changelog.Build(registry)
	format := viper.GetString("format")

	if !viper.GetBool("publish") {
		data, _, err := cl.Render(format)
		if err != nil {
			log.Fatal(err)
		}
		if _, err := os.Stdout.Write(data); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	publisher, err := changelog.NewPublisher(ctx, &changelog.PublisherConfig{
		Endpoint:  viper.GetString("s3-endpoint"),
		Region:    viper.GetString("s3-region"),
		Bucket:    viper.GetString("s3-bucket"),
		AccessKey: viper.GetString("s3-access-key"),
		SecretKey: viper.GetString("s3-secret-key"),
		PathStyle: viper.GetBool("s3-path-style"),
	})
	if err != nil {
		log.Fatalf("could not create the publisher: %v", err)
	}
	key := viper.GetString("key")
	if key == "" {
		key = fmt.Sprintf("changelog.%s", extension(format))
	}
	location, err := publisher.Publish(ctx, cl, key, format)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(location)
}

func extension(format string) string {
	switch format {
	case changelog.FormatHTML:
		return "html"
	case changelog.FormatJSON:
		return "json"
	default:
		return "md"
	}
}
