package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/certhouse/certhouse/certificate"
	"github.com/certhouse/certhouse/cmd/certhouse/config"
	"github.com/certhouse/certhouse/issuance"
)

var batchArgs struct {
	training     uint
	participants []uint
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "publish certificates for participants of a training",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config.Get()
		renderer, err := certificate.NewRenderer()
		if err != nil {
			return err
		}
		artifacts, err := c.Artifacts.Store()
		if err != nil {
			return err
		}
		backs := store.Backends()
		p := &issuance.Publisher{
			Enrollments:  backs.Enrollments,
			Certificates: backs.Certificates,
			KV:           backs.KV,
			Renderer:     renderer,
			Licenses:     c.Certificate.Licenses(),
			Artifacts:    artifacts,
			Assets:       c.Certificate.Assets(),
		}
		res, err := p.Publish(cmd.Context(), batchRequest())
		if err != nil {
			return err
		}
		return printResult(cmd, res)
	},
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "create certificate placeholders for completed enrollments",
	RunE: func(cmd *cobra.Command, args []string) error {
		backs := store.Backends()
		p := &issuance.Provisioner{
			Enrollments:  backs.Enrollments,
			Certificates: backs.Certificates,
		}
		res, err := p.Provision(batchRequest())
		if err != nil {
			return err
		}
		return printResult(cmd, res)
	},
}

func batchRequest() issuance.BatchRequest {
	return issuance.BatchRequest{
		TrainingID:     batchArgs.training,
		ParticipantIDs: batchArgs.participants,
	}
}

func printResult(cmd *cobra.Command, res *issuance.Result) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func init() {
	for _, cmd := range []*cobra.Command{publishCmd, provisionCmd} {
		cmd.Flags().UintVarP(&batchArgs.training, "training", "t", 0, "the training id")
		cmd.Flags().UintSliceVarP(&batchArgs.participants, "participants", "p", nil, "comma separated participant ids")
		_ = cmd.MarkFlagRequired("training")
		_ = cmd.MarkFlagRequired("participants")
	}
}
