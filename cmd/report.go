package cmd

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"billed/bill"
)

var inputPath string
var outputPath string

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Short:   "summarize an exported bills CSV",
		Long:    `accept a CSV export of bills and write a text summary: totals per expense type and counts per status.`,
		Example: `billed report --input bills.csv --output report.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" || outputPath == "" {
				return cmd.Help()
			}

			inputFile, err := os.Open(inputPath)
			if err != nil {
				return err
			}
			defer func(inputFile *os.File) {
				err := inputFile.Close()
				if err != nil {
					log.Fatalf("Failed to close input file: %v", err)
				}
			}(inputFile)

			csvContent, err := csv.NewReader(inputFile).ReadAll()
			if err != nil {
				return err
			}

			bills, err := ParseCSVToBills(csvContent)
			if err != nil {
				return fmt.Errorf("failed to parse CSV: %w", err)
			}
			if len(bills) == 0 {
				return fmt.Errorf("no valid bills found in the CSV")
			}

			report := bill.Summarize(bills)

			outputFile, err := os.Create(outputPath)
			if err != nil {
				return err
			}
			defer func(outputFile *os.File) {
				err := outputFile.Close()
				if err != nil {
					log.Fatalf("Failed to close output file: %v", err)
				}
			}(outputFile)

			_, err = outputFile.Write([]byte(report.String()))
			if err != nil {
				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "csv input file path (required)")
	err := cmd.MarkFlagRequired("input")
	if err != nil {
		log.Fatal(err)
		return nil
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "text output file path (required)")
	err = cmd.MarkFlagRequired("output")
	if err != nil {
		log.Fatal(err)
		return nil
	}

	return cmd
}

// ParseCSVToBills parses a CSV export (email, type, name, amount, date,
// status) into bills. The first row is a header and is skipped.
func ParseCSVToBills(csvContent [][]string) ([]bill.Bill, error) {
	if len(csvContent) == 0 {
		return nil, fmt.Errorf("CSV is empty")
	}

	// skip the header row
	dataRows := csvContent[1:]

	var bills []bill.Bill
	for i, row := range dataRows {
		if len(row) != 6 {
			return nil, fmt.Errorf("row %d: expected 6 columns, but got %d", i+2, len(row)) // +2 to account for the header row
		}

		amount, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to convert amount '%s' to float: %w", i+2, row[3], err)
		}

		bills = append(bills, bill.Bill{
			Email:  strings.TrimSpace(row[0]),
			Type:   strings.TrimSpace(row[1]),
			Name:   strings.TrimSpace(row[2]),
			Amount: amount,
			Date:   strings.TrimSpace(row[4]),
			Status: bill.Status(strings.TrimSpace(row[5])),
		})
	}
	return bills, nil
}
