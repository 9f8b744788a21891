package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"

	"opsrun/internal/commands"
	"opsrun/internal/config"
	"opsrun/internal/discover"
	"opsrun/internal/executor"
	"opsrun/internal/history"
	"opsrun/internal/repo"
	"opsrun/internal/run"
	"opsrun/internal/secrets"
	"opsrun/internal/sshcheck"
	"opsrun/internal/ui"
)

// Main menu entries.
const (
	menuRunPlaybook    = "Run playbook"
	menuCustomCommand  = "Run custom command"
	menuManageCommands = "Manage custom commands"
	menuRecentRuns     = "Recent runs"
	menuUpdateRepo     = "Update repository"
	menuSetRepoPath    = "Set repository path"
	menuQuit           = "Quit"
)

const noRoleLimit = "(no role limit)"

// Runner launches an assembled invocation. The production implementation is
// executor.Executor; tests substitute a recorder.
type Runner interface {
	Run(ctx context.Context, name string, args []string) (int, error)
}

// PreflightFunc probes inventory hosts and returns the unreachable ones.
type PreflightFunc func(hosts []string, defaults config.AnsibleDefaults) []string

// Session drives one interactive operator session. One run at a time; the
// last executed run's exit code becomes the process exit code.
type Session struct {
	Config    *config.Config
	UI        ui.UI
	Runner    Runner
	History   *history.Log
	Log       zerolog.Logger
	Preflight PreflightFunc

	lastExit int
}

func defaultRunner(log zerolog.Logger) Runner {
	return &executor.Executor{Log: log}
}

func defaultPreflight(hosts []string, d config.AnsibleDefaults) []string {
	c := &sshcheck.Checker{User: d.RemoteUser, KeyPath: d.PrivateKeyFile}
	return c.Unreachable(hosts)
}

var mainMenu = []string{
	menuRunPlaybook,
	menuCustomCommand,
	menuManageCommands,
	menuRecentRuns,
	menuUpdateRepo,
	menuSetRepoPath,
	menuQuit,
}

// Run loops over the main menu until the operator quits. Errors inside a flow
// never end the session; they are reported and the menu is shown again.
func (s *Session) Run(ctx context.Context) int {
	for {
		choice, err := s.UI.Choose("opsrun main menu", mainMenu)
		if err != nil {
			return s.lastExit
		}

		var flowErr error
		switch mainMenu[choice] {
		case menuRunPlaybook:
			flowErr = s.runPlaybookFlow(ctx)
		case menuCustomCommand:
			flowErr = s.customCommandFlow(ctx)
		case menuManageCommands:
			flowErr = s.manageCommandsFlow()
		case menuRecentRuns:
			flowErr = s.recentRunsFlow()
		case menuUpdateRepo:
			flowErr = s.updateRepoFlow(ctx)
		case menuSetRepoPath:
			flowErr = s.setRepoPathFlow()
		case menuQuit:
			return s.lastExit
		}

		if flowErr != nil {
			if errors.Is(flowErr, ui.ErrAborted) {
				continue
			}
			s.report(flowErr)
		}
	}
}

// report surfaces a flow error without ending the session. A DiscoveryError
// additionally offers repository path reconfiguration.
func (s *Session) report(err error) {
	var derr *discover.DiscoveryError
	if errors.As(err, &derr) {
		fmt.Printf("\033[31m%v\033[0m\n", derr)
		choice, cerr := s.UI.Choose("Repository is not usable", []string{menuSetRepoPath, "Back"})
		if cerr == nil && choice == 0 {
			if perr := s.setRepoPathFlow(); perr != nil && !errors.Is(perr, ui.ErrAborted) {
				fmt.Printf("\033[31m%v\033[0m\n", perr)
			}
		}
		return
	}
	fmt.Printf("\033[31m%v\033[0m\n", err)
}

// runPlaybookFlow walks the operator through one full run: discover, select,
// build, gate, execute, record.
func (s *Session) runPlaybookFlow(ctx context.Context) error {
	listing, err := discover.Scan(s.Config.RepositoryPath)
	if err != nil {
		return err
	}
	if len(listing.Playbooks) == 0 {
		return fmt.Errorf("no playbooks found under %s", s.Config.RepositoryPath)
	}
	if len(listing.Inventories) == 0 {
		return fmt.Errorf("no inventories found under %s", s.Config.RepositoryPath)
	}

	s.transition(run.Selecting)

	inventory, err := s.chooseRef("Select inventory", listing.Inventories, nil)
	if err != nil {
		return err
	}
	playbook, err := s.chooseRef("Select playbook", listing.Playbooks, discover.Peek)
	if err != nil {
		return err
	}

	var roleLimit *discover.Ref
	if len(listing.Roles) > 0 {
		options := []string{noRoleLimit}
		for _, r := range listing.Roles {
			options = append(options, r.Name)
		}
		idx, err := s.UI.Choose("Limit to a role?", options)
		if err != nil {
			return err
		}
		if idx > 0 {
			roleLimit = &listing.Roles[idx-1]
		}
	}

	extraVars, err := s.collectExtraVars()
	if err != nil {
		return err
	}

	builder := run.NewBuilder(listing, s.Config.Patterns())
	req, err := builder.Build(playbook, inventory, roleLimit, extraVars)
	if err != nil {
		return err
	}
	s.transition(run.Built)

	if ok, err := s.preflight(req.Inventory); err != nil || !ok {
		return err
	}

	proceed, err := s.gate(req)
	if err != nil || !proceed {
		return err
	}

	return s.execute(ctx, req)
}

func (s *Session) transition(state run.State) {
	s.Log.Debug().Str("state", state.String()).Msg("state transition")
}

// chooseRef presents refs by display name, optionally annotated.
func (s *Session) chooseRef(title string, refs []discover.Ref, annotate func(string) string) (*discover.Ref, error) {
	options := make([]string, len(refs))
	for i, r := range refs {
		options[i] = r.Name
		if annotate != nil {
			if ann := annotate(r.Path); ann != "" {
				options[i] = fmt.Sprintf("%s  %s", r.Name, ann)
			}
		}
	}
	idx, err := s.UI.Choose(title, options)
	if err != nil {
		return nil, err
	}
	return &refs[idx], nil
}

// collectExtraVars prompts for key=value pairs until the operator submits a
// blank line. Validation happens in the builder, not here.
func (s *Session) collectExtraVars() ([]string, error) {
	var pairs []string
	for {
		pair, err := s.UI.Input("Extra variable (key=value, blank to continue)", "")
		if err != nil {
			return nil, err
		}
		if pair == "" {
			return pairs, nil
		}
		pairs = append(pairs, pair)
	}
}

// preflight probes inventory hosts and lets the operator abort when some are
// unreachable. Returns false when the operator backs out.
func (s *Session) preflight(inventory discover.Ref) (bool, error) {
	hosts, err := sshcheck.HostsFromInventory(inventory.Path)
	if err != nil || len(hosts) == 0 {
		// YAML inventories and unreadable files just skip the probe
		return true, nil
	}

	check := s.Preflight
	if check == nil {
		check = defaultPreflight
	}
	defaults, err := config.ReadAnsibleCfg(s.Config.RepositoryPath)
	if err != nil {
		s.Log.Warn().Err(err).Msg("failed to read ansible.cfg")
	}

	fmt.Printf("Checking SSH connectivity to %d hosts...\n", len(hosts))
	failed := check(hosts, defaults)
	if len(failed) == 0 {
		return true, nil
	}

	fmt.Printf("\033[33mCould not connect to %d host(s):\033[0m\n", len(failed))
	for _, h := range failed {
		fmt.Printf("  - %s\n", h)
	}
	choice, err := s.UI.Choose("Some hosts are unreachable", []string{"Continue anyway", "Abort run"})
	if err != nil {
		return false, err
	}
	return choice == 0, nil
}

// gate runs the confirmation gate, advancing the run state machine. A
// declined run reports false with a nil error: nothing executes, nothing is
// recorded.
func (s *Session) gate(req *run.Request) (bool, error) {
	if !req.RequiresConfirmation {
		s.transition(run.Confirmed)
		return true, nil
	}

	s.transition(run.AwaitingConfirmation)
	confirmer := &run.PhraseConfirmer{
		Phrase: s.Config.Phrase(),
		Ask: func(prompt string) (string, error) {
			return s.UI.Input(prompt, "")
		},
	}
	ok, err := run.Gate(req, confirmer)
	if err != nil {
		return false, err
	}
	if !ok {
		s.transition(run.Declined)
		s.Log.Info().Str("inventory", req.Inventory.Name).Msg("run declined")
		fmt.Println("\033[33mRun aborted, nothing executed.\033[0m")
		return false, nil
	}
	s.transition(run.Confirmed)
	return true, nil
}

// execute launches the run, records it, and mirrors the exit code.
func (s *Session) execute(ctx context.Context, req *run.Request) error {
	defaults, err := config.ReadAnsibleCfg(s.Config.RepositoryPath)
	if err != nil {
		s.Log.Warn().Err(err).Msg("failed to read ansible.cfg")
	}

	keyPath := defaults.PrivateKeyFile
	if s.Config.Vault != nil && s.Config.Vault.Enabled {
		vaultKey, err := secrets.FetchSSHKey(ctx, s.Config.Vault)
		if err != nil {
			s.Log.Warn().Err(err).Msg("vault ssh key unavailable, falling back to ansible.cfg")
		} else {
			keyPath = vaultKey
			defer os.Remove(vaultKey)
		}
	}

	ex := &executor.Executor{
		Bin:        s.Config.PlaybookBin(),
		RemoteUser: defaults.RemoteUser,
		SSHKeyPath: keyPath,
	}
	bin, args := ex.Command(req)

	s.transition(run.Executing)

	// forward operator interrupts to the subprocess
	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	code, err := s.Runner.Run(runCtx, bin, args)
	stop()
	if err != nil {
		return fmt.Errorf("failed to launch %s: %w", bin, err)
	}

	s.record(req.Playbook.Name, req.Inventory.Name, code)
	s.transition(run.Completed)

	if code != 0 {
		fmt.Printf("\033[31mAutomation run failed with exit code %d\033[0m\n", code)
	} else {
		fmt.Println("\033[32mRun completed successfully.\033[0m")
	}
	return nil
}

func (s *Session) record(playbook, inventory string, code int) {
	s.lastExit = code
	err := s.History.Append(history.Record{
		Timestamp: time.Now(),
		Playbook:  playbook,
		Inventory: inventory,
		ExitCode:  code,
	})
	if err != nil {
		s.Log.Warn().Err(err).Msg("failed to record run history")
	}
}

// customCommandFlow runs a saved ad-hoc command against a chosen inventory.
// Production-flagged inventories go through the same gate as playbook runs.
func (s *Session) customCommandFlow(ctx context.Context) error {
	listing, err := discover.Scan(s.Config.RepositoryPath)
	if err != nil {
		return err
	}
	if len(listing.Inventories) == 0 {
		return fmt.Errorf("no inventories found under %s", s.Config.RepositoryPath)
	}

	saved, err := commands.List(s.Config.RepositoryPath)
	if err != nil {
		return err
	}
	if len(saved) == 0 {
		return fmt.Errorf("no custom commands saved yet")
	}

	inventory, err := s.chooseRef("Select inventory", listing.Inventories, nil)
	if err != nil {
		return err
	}
	idx, err := s.UI.Choose("Select command", saved)
	if err != nil {
		return err
	}
	command := saved[idx]

	if ok, err := s.preflight(*inventory); err != nil || !ok {
		return err
	}

	req := &run.Request{
		Playbook:             discover.Ref{Name: command},
		Inventory:            *inventory,
		RequiresConfirmation: run.MatchesProduction(*inventory, s.Config.Patterns()),
	}
	if ok, err := s.gate(req); err != nil || !ok {
		return err
	}

	bin, args, err := commands.Split(command, inventory.Path)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	code, err := s.Runner.Run(runCtx, bin, args)
	stop()
	if err != nil {
		return fmt.Errorf("failed to launch %s: %w", bin, err)
	}

	s.record(command, inventory.Name, code)
	if code != 0 {
		fmt.Printf("\033[31mCommand failed with exit code %d\033[0m\n", code)
	}
	return nil
}

func (s *Session) manageCommandsFlow() error {
	for {
		choice, err := s.UI.Choose("Custom commands", []string{"View saved commands", "Add a new command", "Back"})
		if err != nil {
			return err
		}
		switch choice {
		case 0:
			saved, err := commands.List(s.Config.RepositoryPath)
			if err != nil {
				return err
			}
			if len(saved) == 0 {
				fmt.Println("No custom commands saved yet.")
				continue
			}
			for i, c := range saved {
				fmt.Printf("%d. %s\n", i+1, c)
			}
		case 1:
			command, err := s.UI.Input("Full ansible/ansible-playbook command", "ansible all -m ping")
			if err != nil {
				return err
			}
			if err := commands.Add(s.Config.RepositoryPath, command); err != nil {
				return err
			}
			fmt.Println("\033[32mCommand saved.\033[0m")
		case 2:
			return nil
		}
	}
}

func (s *Session) recentRunsFlow() error {
	lines, err := s.History.Recent(10)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}
	fmt.Println("\033[35mRecent runs:\033[0m")
	for _, line := range lines {
		fmt.Println("  " + line)
	}
	return nil
}

func (s *Session) updateRepoFlow(ctx context.Context) error {
	spinner := ui.NewSpinner("Updating repository")
	spinner.Start()
	err := repo.CloneOrUpdate(ctx, s.Config.RepositoryPath, s.Config.RepositoryURL, s.Log)
	spinner.Stop()
	if err != nil {
		return err
	}
	fmt.Println("\033[32mRepository updated.\033[0m")
	return nil
}

func (s *Session) setRepoPathFlow() error {
	path, err := s.UI.Input("Repository path", s.Config.RepositoryPath)
	if err != nil {
		return err
	}
	if err := repo.Validate(path); err != nil {
		return err
	}
	s.Config.RepositoryPath = path
	if err := config.SaveConfig(s.Config); err != nil {
		return err
	}
	fmt.Printf("\033[32mRepository path set to %s\033[0m\n", path)
	return nil
}
