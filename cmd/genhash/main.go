// genhash prints a bcrypt hash for seeding admin credentials by hand.
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	password := flag.String("password", "", "password to hash")
	flag.Parse()
	if *password == "" {
		fmt.Fprintln(os.Stderr, "usage: genhash -password <password>")
		os.Exit(1)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("Password: %s\nHash: %s\n", *password, string(hash))
}
