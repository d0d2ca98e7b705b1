// This file is part of site-backup
//
// Copyright (C) 2026  SiteOps
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var listBackupHeaders = []string{"ID", "Type", "Size", "Age", "Initiator"}

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Inspect and restore environment backups.",
	Run: func(cmd *cobra.Command, args []string) {
		if err := cmd.Help(); err != nil {
			logger.Error(err.Error())
		}
	},
}

// backupListCmd represents the backup list command
var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all backups of the environment.",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newAPIClient()
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		backups, err := client.ListBackups(context.Background())
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}

		data := make([][]string, 0, len(backups))
		for _, b := range backups {
			age := ""
			if d := b.Date(); !d.Pending {
				age = humanize.Time(time.Unix(d.Epoch, 0))
			} else {
				age = d.String()
			}
			data = append(data, []string{b.ID, b.Type, b.SizeMB(), age, b.Initiator()})
		}
		output(listBackupHeaders, data)
	},
}

// backupInfoCmd represents the backup info command
var backupInfoCmd = &cobra.Command{
	Use:   "info <backup-id>",
	Short: "Show the details of one backup.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newAPIClient()
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		b, err := client.GetBackup(context.Background(), args[0])
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		d := b.Detail()
		expiry := ""
		if d.Expiry != 0 {
			expiry = fmt.Sprintf("%d", d.Expiry)
		}
		output(
			[]string{"File", "Size", "Date", "Expiry", "Initiator", "Type"},
			[][]string{{d.File, d.Size, d.Date, expiry, d.Initiator, d.Type}},
		)
	},
}

// backupURLCmd represents the backup url command
var backupURLCmd = &cobra.Command{
	Use:   "url <backup-id>",
	Short: "Print a signed download url for a backup archive.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newAPIClient()
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		b, err := client.GetBackup(context.Background(), args[0])
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		u, err := b.ArchiveURL(context.Background())
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		fmt.Println(u)
	},
}

// backupRestoreCmd represents the backup restore command
var backupRestoreCmd = &cobra.Command{
	Use:   "restore <backup-id>",
	Short: "Restore the environment from a backup.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newAPIClient()
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		b, err := client.GetBackup(context.Background(), args[0])
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		w, err := b.Restore(context.Background())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fmt.Printf("Started workflow %s (%s)\n", w.ID, w.Type)
	},
}

func output(headers []string, data [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.AppendBulk(data)
	table.Render()
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupInfoCmd)
	backupCmd.AddCommand(backupURLCmd)
	backupCmd.AddCommand(backupRestoreCmd)
}
