package main

import (
	"context"
	"crimereport/backend/internal/auth"
	"crimereport/backend/internal/classifier"
	"crimereport/backend/internal/config"
	"crimereport/backend/internal/localization"
	"crimereport/backend/internal/models"
	"crimereport/backend/internal/storage"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type app struct {
	cfg     *config.Config
	storage storage.Storage
}

func main() {
	a := &app{}
	if err := a.rootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:          "admin",
		Short:        "Administration commands for the case engine",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file to load")

	root.AddCommand(a.userCmd(), a.tokenCmd(), classifyCmd())
	return root
}

// open connects the storage on first use; classify never needs it.
func (a *app) open(ctx context.Context) (storage.Storage, error) {
	if a.storage != nil {
		return a.storage, nil
	}
	s, err := storage.Open(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	a.storage = s
	return s, nil
}

func (a *app) userCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage principals"}

	var fullName, role, department, region, lang string
	create := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := models.ParseRole(role)
			if !ok {
				return fmt.Errorf("unknown role %q", role)
			}
			if err := checkDepartment(r, department); err != nil {
				return err
			}
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			user := &models.User{
				Username:           args[0],
				FullName:           fullName,
				Role:               r,
				Department:         department,
				JurisdictionRegion: region,
				PreferredLanguage:  lang,
				IsActive:           true,
			}
			if err := s.SaveUser(cmd.Context(), user); err != nil {
				return err
			}
			fmt.Printf("User %s created with ID %s.\n", user.Username, user.ID)
			return nil
		},
	}
	create.Flags().StringVar(&fullName, "full-name", "", "display name")
	create.Flags().StringVar(&role, "role", string(models.RoleCitizen), "citizen, authority, admin or moderator")
	create.Flags().StringVar(&department, "department", "", "department tag (authorities)")
	create.Flags().StringVar(&region, "region", "", "jurisdiction region (authorities)")
	create.Flags().StringVar(&lang, "lang", localization.DefaultLanguage, "preferred language: fr, wo or en")

	var newDepartment string
	setRole := &cobra.Command{
		Use:   "role <username> <role>",
		Short: "Change the role of a principal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := models.ParseRole(args[1])
			if !ok {
				return fmt.Errorf("unknown role %q", args[1])
			}
			return a.updateUser(cmd.Context(), args[0], func(u *models.User) error {
				u.Role = r
				if newDepartment != "" {
					u.Department = newDepartment
				}
				return checkDepartment(u.Role, u.Department)
			})
		},
	}
	setRole.Flags().StringVar(&newDepartment, "department", "", "department tag to assign")

	activate := &cobra.Command{
		Use:   "activate <username>",
		Short: "Re-enable a principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.updateUser(cmd.Context(), args[0], func(u *models.User) error {
				u.IsActive = true
				return nil
			})
		},
	}
	deactivate := &cobra.Command{
		Use:   "deactivate <username>",
		Short: "Disable a principal; its tokens stop working and it receives no new cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.updateUser(cmd.Context(), args[0], func(u *models.User) error {
				u.IsActive = false
				return nil
			})
		},
	}

	var listRole, listDepartment string
	list := &cobra.Command{
		Use:   "list",
		Short: "List principals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			users, err := s.ListUsers(cmd.Context(), storage.UserFilter{Role: models.Role(listRole), Department: listDepartment})
			if err != nil {
				return err
			}
			for _, u := range users {
				fmt.Printf("%s\t%s\t%s\t%s\tactive=%t\n", u.ID, u.Username, u.Role, u.Department, u.IsActive)
			}
			return nil
		},
	}
	list.Flags().StringVar(&listRole, "role", "", "filter by role")
	list.Flags().StringVar(&listDepartment, "department", "", "filter by department tag")

	cmd.AddCommand(create, setRole, activate, deactivate, list)
	return cmd
}

func (a *app) updateUser(ctx context.Context, username string, edit func(u *models.User) error) error {
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("user %s: %w", username, err)
	}
	if err := edit(user); err != nil {
		return err
	}
	if err := s.SaveUser(ctx, user); err != nil {
		return err
	}
	fmt.Printf("User %s updated (role=%s, department=%s, active=%t).\n", user.Username, user.Role, user.Department, user.IsActive)
	return nil
}

func checkDepartment(role models.Role, department string) error {
	if department != "" && !classifier.IsDepartment(department) {
		return fmt.Errorf("unknown department %q", department)
	}
	if role == models.RoleAuthority && department == "" {
		fmt.Println("Warning: authority without department sees cases of every department.")
	}
	return nil
}

func (a *app) tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <username>",
		Short: "Issue a bearer token for a principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			user, err := s.GetUserByUsername(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("user %s: %w", args[0], err)
			}
			token, err := auth.NewManager(a.cfg.Auth).Issue(user)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}

func classifyCmd() *cobra.Command {
	var region, description string
	cmd := &cobra.Command{
		Use:   "classify <category>",
		Short: "Show how a case would be routed",
		Args:  cobra.ExactArgs(1),
		// Routing is pure; no configuration or storage is needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := json.MarshalIndent(classifier.Classify(args[0], region, description), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&region, "region", "", "region of the incident")
	cmd.Flags().StringVar(&description, "description", "", "free-text description")
	return cmd
}
