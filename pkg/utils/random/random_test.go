// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package random

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRandom(t *testing.T) {
	Convey("When drawing with a fixed source", t, func() {
		Convey("Choice always picks the configured index", func() {
			So(Choice(Fixed(0), LoadMultipliers), ShouldEqual, 0.9)
			So(Choice(Fixed(1), LoadMultipliers), ShouldEqual, 1.0)
			So(Choice(Fixed(2), RestMultipliers), ShouldEqual, 1.0)
		})

		Convey("JitterPercent multiplies and clamps", func() {
			So(JitterPercent(70, Fixed(0)), ShouldEqual, 63)
			So(JitterPercent(70, Fixed(1)), ShouldEqual, 70)
			So(JitterPercent(70, Fixed(2)), ShouldEqual, 77)
			So(JitterPercent(100, Fixed(2)), ShouldEqual, 100)
			So(JitterPercent(0, Fixed(0)), ShouldEqual, 0)
		})

		Convey("JitterCount rounds up partial observations", func() {
			So(JitterCount(2, Fixed(0)), ShouldEqual, 2)
			So(JitterCount(140, Fixed(0)), ShouldEqual, 84)
			So(JitterCount(140, Fixed(2)), ShouldEqual, 140)
			So(JitterCount(140, Fixed(4)), ShouldEqual, 196)
			So(JitterCount(0, Fixed(4)), ShouldEqual, 0)
		})
	})

	Convey("When drawing with a seeded source", t, func() {
		src := NewSource(42)

		Convey("Every multiplier stays in its domain", func() {
			for i := 0; i < 100; i++ {
				So(LoadMultipliers, ShouldContain, Choice(src, LoadMultipliers))
				So(RestMultipliers, ShouldContain, Choice(src, RestMultipliers))
			}
		})

		Convey("Shuffle keeps every element", func() {
			values := []int{1, 2, 3, 4, 5, 6}
			Shuffle(src, len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
			So(values, ShouldHaveLength, 6)
			for _, v := range []int{1, 2, 3, 4, 5, 6} {
				So(values, ShouldContain, v)
			}
		})
	})
}
