// gatehousectl: CLI de operación contra la API de gatehouse.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL = envOr("GATEHOUSE_URL", "http://localhost:8080")
		token   = envOr("GATEHOUSE_TOKEN", "")
		out     = envOr("GATEHOUSE_OUT", "text")
	)

	// cookie jar para que login → refresh funcione en la misma corrida
	jar, _ := cookiejar.New(nil)
	cl := &client{
		BaseURL:   baseURL,
		Token:     token,
		OutFormat: out,
		HTTP:      &http.Client{Timeout: 30 * time.Second, Jar: jar},
	}

	root := &cobra.Command{
		Use:   "gatehousectl",
		Short: "CLI de operación para gatehouse",
	}
	root.PersistentFlags().StringVar(&cl.BaseURL, "url", baseURL, "URL base de la API (env GATEHOUSE_URL)")
	root.PersistentFlags().StringVar(&cl.Token, "token", token, "access token Bearer (env GATEHOUSE_TOKEN)")
	root.PersistentFlags().StringVar(&cl.OutFormat, "out", out, "formato de salida: json|text")

	loginCmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Login con password (se pide por stdin si no se pasa --password)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pass, _ := cmd.Flags().GetString("password")
			if pass == "" {
				fmt.Fprint(os.Stderr, "password: ")
				if _, err := fmt.Scanln(&pass); err != nil {
					return err
				}
			}
			body, _ := json.Marshal(map[string]string{"email": args[0], "password": pass})
			status, resp, err := cl.do(http.MethodPost, "/v1/auth/login", body)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}
	loginCmd.Flags().String("password", "", "password (evitar en shells compartidas)")

	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Perfil del usuario autenticado",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, resp, err := cl.do(http.MethodGet, "/v1/me", nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	logoutAllCmd := &cobra.Command{
		Use:   "logout-all",
		Short: "Cierra sesión en todos los dispositivos",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, resp, err := cl.do(http.MethodPost, "/v1/auth/logout-all", nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	purgeCmd := &cobra.Command{
		Use:   "sessions:purge",
		Short: "Borra sesiones vencidas o revocadas (requiere rol ADMIN)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, resp, err := cl.do(http.MethodPost, "/v1/admin/sessions/purge", nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Estado de la API (readyz)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, resp, err := cl.do(http.MethodGet, "/readyz", nil)
			if err != nil {
				return err
			}
			cl.print(status, resp)
			return nil
		},
	}

	root.AddCommand(loginCmd, meCmd, logoutAllCmd, purgeCmd, healthCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
