// Command inspect dumps message records from a Badger store as a table.
// Read-only by design so it can run against a live database directory.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// record mirrors the stored message payload. Kept local so the tool keeps
// working on old rows even when the domain struct moves.
type record struct {
	ID              string `json:"id"`
	SenderID        string `json:"sender_id"`
	RecipientID     string `json:"recipient_id"`
	Content         string `json:"content"`
	Kind            string `json:"kind"`
	Status          string `json:"status"`
	ImgRevealed     bool   `json:"img_viewed"`
	RevealExpiresAt *int64 `json:"expiry_timestamp"`
	CreatedAt       int64  `json:"created_at"`
	DeletedAt       *int64 `json:"deleted_at"`
}

func main() {
	dbPath := flag.String("db", "/tmp/ghostsnap", "Path to badger DB")
	// Record keys only; conv:/inbox: entries are pointers, not payloads.
	prefix := flag.String("prefix", "message:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	header := color.New(color.BgBlack, color.FgGreen).Render(fmt.Sprintf("Scanning %s (prefix %q)", *dbPath, *prefix))
	fmt.Println(header)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Status", "Sender", "Recipient", "Revealed", "Expiry", "Created", "Content"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				var rec record
				if err := json.Unmarshal(v, &rec); err != nil {
					fmt.Printf("Error unmarshaling key %s: %v\n", string(item.Key()), err)
					return nil
				}

				status := rec.Status
				if rec.DeletedAt != nil {
					status = "deleted"
				}

				expiry := ""
				if rec.RevealExpiresAt != nil {
					expiry = time.Unix(0, *rec.RevealExpiresAt).UTC().Format("15:04:05")
				}

				content := rec.Content
				if len(content) > 40 {
					content = content[:40] + "…"
				}

				table.Append([]string{
					string(item.Key()),
					rec.Kind,
					status,
					short(rec.SenderID),
					short(rec.RecipientID),
					fmt.Sprintf("%t", rec.ImgRevealed),
					expiry,
					time.Unix(0, rec.CreatedAt).UTC().Format("15:04:05"),
					content,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

// short keeps the first 8 characters of an id for readability.
func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		// Corrupted value log: one read-write open truncates it, then
		// reopen read-only.
		if strings.Contains(err.Error(), "Log truncate required") {
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}
			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
