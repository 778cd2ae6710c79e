// Command retroplan 离线逆向规划模拟器：从 YAML 场景生成计划并在终端输出报告
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "retroplan",
	Short: "Capacity-aware retroplanning tools",
	Long: `Offline tools for the retroplanning engine:
simulate a plan from a YAML scenario, preview ICS calendars and mint access tokens.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
