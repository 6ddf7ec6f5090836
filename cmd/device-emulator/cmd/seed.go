package cmd

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/term"

	"device-core/internal/keyvault"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the encrypted device seed",
	Long: `Generates a BIP-39 mnemonic for the emulated device and stores it
scrypt-encrypted at the keystore path. Run once before "run".`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		mnemonic, _ := cmd.Flags().GetString("mnemonic")

		if mnemonic == "" {
			entropy, err := bip39.NewEntropy(256)
			if err != nil {
				fmt.Printf("entropy generation failed: %v\n", err)
				os.Exit(1)
			}
			mnemonic, err = bip39.NewMnemonic(entropy)
			if err != nil {
				fmt.Printf("mnemonic generation failed: %v\n", err)
				os.Exit(1)
			}
		} else if !bip39.IsMnemonicValid(mnemonic) {
			fmt.Println("provided mnemonic is invalid")
			os.Exit(1)
		}

		fmt.Print("Keystore password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			fmt.Println("\nreading password failed:", err)
			os.Exit(1)
		}
		fmt.Println()

		key, err := keyvault.EncryptMnemonic(mnemonic, string(bytePassword))
		if err != nil {
			fmt.Printf("encryption failed: %v\n", err)
			os.Exit(1)
		}
		if err := keyvault.SaveToFile(key, output); err != nil {
			fmt.Printf("saving keystore failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Device seed written to %s\n", output)
		fmt.Printf("Mnemonic (back this up, shown once):\n%s\n", mnemonic)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringP("output", "o", "device-seed.json", "keystore output path")
	seedCmd.Flags().StringP("mnemonic", "m", "", "import an existing mnemonic instead of generating one")
}
