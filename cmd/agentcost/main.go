// Package main is the entry point for the AgentCost TUI application.
// It initializes configuration, services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agentcost/agentcost-tui/internal/app"
	"github.com/agentcost/agentcost-tui/internal/config"
	"github.com/agentcost/agentcost-tui/internal/services"
	"github.com/agentcost/agentcost-tui/internal/ui/tabs/account"
	"github.com/agentcost/agentcost-tui/internal/ui/tabs/dashboard"
	"github.com/agentcost/agentcost-tui/internal/ui/tabs/events"
	"github.com/agentcost/agentcost-tui/internal/ui/tabs/optimize"
	"github.com/agentcost/agentcost-tui/internal/ui/tabs/settings"
	"github.com/agentcost/agentcost-tui/internal/ui/tabs/team"
	"github.com/agentcost/agentcost-tui/internal/version"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	// Run the application
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Initialize the service manager
	// This starts the session, analytics, event, and optimization services
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	// Ensure cleanup on exit
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 3. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 4. Initialize tabs with shared state
	// Each tab receives the shared application state for consistent data access
	state := model.GetState()
	tabs := []app.Tab{
		dashboard.New(state), // Tab 0: Dashboard - spend overview
		events.New(state),    // Tab 1: Events - API call log
		optimize.New(state),  // Tab 2: Optimize - savings recommendations
		team.New(state),      // Tab 3: Team - project membership
		account.New(state),   // Tab 4: Account - session and profile
		settings.New(state),  // Tab 5: Settings - project configuration
	}
	model.SetTabs(tabs)

	// 5. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 6. Create and configure the Bubble Tea program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer (full terminal)
		tea.WithMouseCellMotion(), // Enable mouse support for selection
	)

	// 7. Handle signals in a separate goroutine
	go func() {
		<-sigChan
		// Send quit message to the program
		p.Send(tea.Quit())
	}()

	// 8. Run the TUI program
	// This blocks until the user quits or an error occurs
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`AgentCost TUI - LLM spend dashboard for your terminal

Usage:
  agentcost [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-6             Switch between tabs
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate lists
  Enter           Select/confirm
  t               Cycle the analytics time range
  r               Refresh data
  ?               Toggle help
  q               Quit

Environment:
  AGENTCOST_API_URL            Override the API base URL
  AGENTCOST_REFRESH_INTERVAL   Background refresh interval (e.g. 45s)`)
}
