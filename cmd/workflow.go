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
	"os"

	"github.com/spf13/cobra"
)

var listWorkflowHeaders = []string{"ID", "Type", "Status", "Result"}

// workflowCmd represents the workflow command
var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Inspect platform workflows.",
	Run: func(cmd *cobra.Command, args []string) {
		if err := cmd.Help(); err != nil {
			logger.Error(err.Error())
		}
	},
}

// workflowStatusCmd represents the workflow status command
var workflowStatusCmd = &cobra.Command{
	Use:   "status <workflow-id>",
	Short: "Show the current status of a workflow.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newAPIClient()
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		w, err := client.GetWorkflow(context.Background(), args[0])
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		output(listWorkflowHeaders, [][]string{{w.ID, w.Type, w.Status, w.Result}})
	},
}

func init() {
	rootCmd.AddCommand(workflowCmd)
	workflowCmd.AddCommand(workflowStatusCmd)
}
