package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
	"github.com/dropDatabas3/authcore/internal/util/atomicwrite"
)

func newKeysCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Clave de firma: generar y publicar",
	}
	cmd.AddCommand(newKeysGenerateCmd(), newKeysJWKSCmd(g))
	return cmd
}

func newKeysGenerateCmd() *cobra.Command {
	var alg, outDir string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Genera un par de claves PEM (rsa | ed25519)",
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := jwtx.GenerateKey(alg)
			if err != nil {
				return err
			}
			km, err := jwtx.NewKeyMaterial(signer)
			if err != nil {
				return err
			}
			priv, pub, err := jwtx.EncodePEM(signer)
			if err != nil {
				return err
			}
			privPath := filepath.Join(outDir, "private.pem")
			pubPath := filepath.Join(outDir, "public.pem")
			if err := atomicwrite.WriteFile(privPath, priv, 0o600); err != nil {
				return err
			}
			if err := atomicwrite.WriteFile(pubPath, pub, 0o644); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "alg=%s kid=%s\n", km.Algorithm(), km.KID())
			fmt.Fprintf(out, "JWT_PRIVATE_KEY_FILE=%s\n", privPath)
			fmt.Fprintf(out, "JWT_PUBLIC_KEY_FILE=%s\n", pubPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&alg, "alg", "rsa", "rsa | ed25519")
	cmd.Flags().StringVar(&outDir, "out", "keys", "directorio de salida")
	return cmd
}

func newKeysJWKSCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "jwks",
		Short: "Imprime el JWKS de la clave configurada",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			priv, err := cfg.PrivateKeyPEM()
			if err != nil {
				return err
			}
			pub, err := cfg.PublicKeyPEM()
			if err != nil {
				return err
			}
			km, err := jwtx.LoadKeyMaterial(priv, pub)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(km.JWKSJSON()))
			return nil
		},
	}
}
