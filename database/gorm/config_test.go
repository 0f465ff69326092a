/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package gorm_test

import (
	libgorm "github.com/nabbar/statcollect/database/gorm"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("GORM Driver", func() {
	It("recognizes mysql case-insensitively", func() {
		Expect(libgorm.DriverFromString("mysql")).To(Equal(libgorm.Driver("mysql")))
		Expect(libgorm.DriverFromString("MySQL")).To(Equal(libgorm.Driver("mysql")))
	})

	It("falls back to DriverNone for anything else", func() {
		Expect(libgorm.DriverFromString("sqlite")).To(Equal(libgorm.Driver("")))
		Expect(libgorm.DriverFromString("")).To(Equal(libgorm.Driver("")))
	})

	It("round-trips through String", func() {
		Expect(libgorm.Driver("mysql").String()).To(Equal("mysql"))
	})

	It("builds a mysql dialector", func() {
		d := libgorm.DriverFromString("mysql")
		Expect(d.Dialector("user:pass@tcp(127.0.0.1:3306)/stats")).ToNot(BeNil())
	})

	It("returns a nil dialector for DriverNone", func() {
		Expect(libgorm.Driver("").Dialector("anything")).To(BeNil())
	})
})

var _ = Describe("GORM Config validation", func() {
	It("rejects a config with no driver and no DSN only via the DSN dial error, not Validate", func() {
		cfg := &libgorm.Config{}
		Expect(cfg.Validate()).To(BeNil())
	})
})
