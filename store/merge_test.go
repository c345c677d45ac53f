package store_test

import (
	. "github.com/Kaptaan1992/honeybees-daycare/store"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("MergeDailyLogs", func() {

	It("prefers the remote version for shared ids", func() {
		local := []DailyLog{{Id: "a", TeacherNotes: "local"}}
		remote := []DailyLog{{Id: "a", TeacherNotes: "remote"}}

		merged := MergeDailyLogs(local, remote)

		Expect(merged).To(HaveLen(1))
		Expect(merged[0].TeacherNotes).To(Equal("remote"))
	})

	It("preserves local-only logs created offline", func() {
		local := []DailyLog{{Id: "a"}, {Id: "offline"}}
		remote := []DailyLog{{Id: "a"}}

		merged := MergeDailyLogs(local, remote)

		Expect(merged).To(HaveLen(2))
		Expect(merged[1].Id).To(Equal("offline"))
	})

	It("appends remote-only logs after the local order", func() {
		local := []DailyLog{{Id: "a"}, {Id: "b"}}
		remote := []DailyLog{{Id: "c"}, {Id: "b"}}

		merged := MergeDailyLogs(local, remote)

		ids := []string{}
		for _, log := range merged {
			ids = append(ids, log.Id)
		}
		Expect(ids).To(Equal([]string{"a", "b", "c"}))
	})

	It("handles both sides empty", func() {
		Expect(MergeDailyLogs(nil, nil)).To(BeEmpty())
	})
})

var _ = Describe("MergeSettings", func() {

	It("takes the remote document but keeps local credentials", func() {
		local := Settings{DaycareName: "Old", CloudUrl: "https://x.supabase.co", CloudAnonKey: "k"}
		remote := Settings{DaycareName: "New", FromEmail: "a@b.c"}

		merged := MergeSettings(local, remote)

		Expect(merged.DaycareName).To(Equal("New"))
		Expect(merged.FromEmail).To(Equal("a@b.c"))
		Expect(merged.CloudUrl).To(Equal("https://x.supabase.co"))
		Expect(merged.CloudAnonKey).To(Equal("k"))
	})
})
