/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package fragment

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/crypto/ssh/terminal"

	liberr "github.com/nabbar/statcollect/errors"
	libvpr "github.com/nabbar/statcollect/viper"
)

// promptPassword is used only when an http.d fragment sets
// "password_prompt = true" instead of (or in addition to) a literal
// "password" key, so an HTTP Basic credential never needs to sit in
// plaintext inside a *.d/*.conf fragment on disk. It is read once at
// config-load time - Config-kind failures are fatal at startup
// and this daemon has no hot-reload path to re-prompt
// later. No prompt banner or coloring: the daemon may not have a
// controlling terminal by the time config loading runs.
func promptPassword(label string) (string, error) {
	if label != "" {
		fmt.Fprintf(os.Stderr, "%s: ", label)
	}
	b, err := terminal.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// resolvePassword returns v's literal "password" key, or interactively
// prompts for one when "password_prompt" is set to true and no literal
// password was configured.
func resolvePassword(v libvpr.Viper, promptLabel string) (string, liberr.Error) {
	if pw := getString(v, "password"); pw != "" {
		return pw, nil
	}
	if !v.GetBool("password_prompt") {
		return "", nil
	}
	pw, err := promptPassword(promptLabel)
	if err != nil {
		return "", ErrorConfigUnreadable.Error(err)
	}
	return pw, nil
}
