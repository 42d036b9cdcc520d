package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"querygpt/models"
	"querygpt/service"
	"querygpt/validation"
)

var (
	uploadFile       string
	uploadCollection string
	queryCollection  string
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a schema PDF to the backend",
	Long: `Uploads a schema PDF to the backend under the given identifier.

Example:
  querygpt upload --file sales.pdf --collection "Sales Database v1"`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Generate SQL for a question against an uploaded schema",
	Long: `Asks the backend for SQL answering the question and prints it.

Example:
  querygpt query --collection "Sales Database v1" "show all orders"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

// readSchemaFile loads path and checks that it holds a PDF small enough to send.
func readSchemaFile(path string, maxBytes int64) (*models.SelectedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := validation.FileSize(info.Size(), maxBytes); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := validation.DetectPDF(data); err != nil {
		return nil, err
	}

	return &models.SelectedFile{
		Name:        filepath.Base(path),
		ContentType: models.ContentTypePDF,
		Data:        data,
	}, nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	file, err := readSchemaFile(uploadFile, cfg.MaxUploadBytes())
	if err != nil {
		return err
	}
	if err := validation.UploadReady(file, uploadCollection); err != nil {
		return err
	}

	client := service.NewBackendClient(cfg.BackendURL, cfg.RequestTimeout, logger)
	if _, err := client.Upload(cmd.Context(), file, uploadCollection); err != nil {
		return errors.New(service.DescribeUploadError(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s) as %q\n",
		file.Name, humanize.Bytes(uint64(file.Size())), uploadCollection)
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	if err := validation.QueryReady(queryCollection, question); err != nil {
		return err
	}

	client := service.NewBackendClient(cfg.BackendURL, cfg.RequestTimeout, logger)
	resp, err := client.Query(cmd.Context(), queryCollection, question)
	if err != nil {
		return errors.New(service.DescribeQueryError(err))
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Result)
	return nil
}
