package main

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aavahealth/migraine-api/api"
	"github.com/aavahealth/migraine-api/ml"
	"github.com/aavahealth/migraine-api/risk"
	"github.com/aavahealth/migraine-api/schema"
	"github.com/aavahealth/migraine-api/store"
	"github.com/aavahealth/migraine-api/utils"
	"github.com/aavahealth/migraine-api/weather"
)

func initConfig() {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("migraine")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("mongo.conn", "mongodb://127.0.0.1:27017")
	viper.SetDefault("mongo.database", "migraine")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("i18n.lang", "en")
}

func initLog() {
	level, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

func main() {
	initConfig()
	initLog()
	utils.InitI18NBundle()

	mongoConn := viper.GetString("mongo.conn")
	mongoDatabase := viper.GetString("mongo.database")

	if err := schema.NewMongoDBIndexer(mongoConn, mongoDatabase).IndexAll(); err != nil {
		log.WithError(err).Fatal("create mongodb indexes")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoConn))
	if err != nil {
		log.WithError(err).Fatal("connect to mongodb")
	}

	mongoStore := store.NewMongoStore(client, mongoDatabase)
	defer mongoStore.Close()

	var weatherSource weather.Source
	if endpoint := viper.GetString("weather.endpoint"); endpoint != "" {
		source := weather.NewMeteoSource(endpoint)
		weather.SetWeatherSource(source)
		weatherSource = source
	}

	cache := ml.NewModelCache()
	trainer := ml.NewTrainer(mongoStore, cache)
	engine := risk.NewEngine(mongoStore, cache, viper.GetString("i18n.lang"))

	server := api.NewServer(mongoStore, trainer, engine, weatherSource, viper.GetBool("server.trace"))

	address := viper.GetString("server.address")
	log.WithField("address", address).Info("migraine api starting")
	if err := server.Run(address); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
