package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/certhouse/certhouse/cmd/certhouse/config"
	"github.com/certhouse/certhouse/storage"
)

var rootCmd = &cobra.Command{
	Use:   "chcli",
	Short: "chcli can help you manage your CertHouse",
	Long:  "chcli can help you manage your CertHouse",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

var configFile string
var store *storage.Storage

func loadConfig() error {
	if err := config.Load(configFile); err != nil {
		return err
	}
	log.Println("Loaded Config")
	var err error
	store, err = config.LoadStorage(config.Get())
	return err
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "the config file to use")
	rootCmd.AddCommand(usersCmd, publishCmd, provisionCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
