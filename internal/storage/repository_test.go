package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"luckydraw/internal/models"
	"luckydraw/internal/storage"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()

	backends := map[string]func() storage.KV{
		"memory": func() storage.KV { return storage.NewMemoryKV() },
		"sqlite": func() storage.KV {
			kv, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "draw.db"))
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			t.Cleanup(func() { _ = kv.Close() })
			return kv
		},
	}

	for name, open := range backends {
		Convey("Given a repository backed by "+name, t, func() {
			repo := storage.NewRepository(open())

			Convey("When nothing has been saved", func() {
				ps, err := repo.Participants(ctx)
				So(err, ShouldBeNil)
				ws, err := repo.Winners(ctx)
				So(err, ShouldBeNil)
				s, err := repo.Settings(ctx)
				So(err, ShouldBeNil)

				Convey("Then records come back empty with default settings", func() {
					So(ps, ShouldBeEmpty)
					So(ws, ShouldBeEmpty)
					So(s.AllowRepeatWinners, ShouldBeFalse)
				})
			})

			Convey("When participants are saved twice", func() {
				So(repo.SaveParticipants(ctx, []models.Participant{{N: 1, Name: "Ann"}, {N: 2, Name: "Bo"}}), ShouldBeNil)
				So(repo.SaveParticipants(ctx, []models.Participant{{N: 9, Name: "Zed"}}), ShouldBeNil)

				Convey("Then the second save replaces the first", func() {
					ps, err := repo.Participants(ctx)
					So(err, ShouldBeNil)
					So(ps, ShouldResemble, []models.Participant{{N: 9, Name: "Zed"}})
				})
			})

			Convey("When winners are added", func() {
				first := models.Winner{N: 1, Name: "Ann", PickedAt: "2024-01-01T00:00:00.000Z"}
				second := models.Winner{N: 2, Name: "Bo", PickedAt: "2024-01-01T00:01:00.000Z"}
				_, err := repo.AddWinner(ctx, first)
				So(err, ShouldBeNil)
				list, err := repo.AddWinner(ctx, second)
				So(err, ShouldBeNil)

				Convey("Then the most recent comes first", func() {
					So(list, ShouldResemble, []models.Winner{second, first})
				})

				Convey("And one is removed twice", func() {
					removed, err := repo.RemoveWinner(ctx, 1, first.PickedAt)
					So(err, ShouldBeNil)
					So(removed, ShouldBeTrue)
					removed, err = repo.RemoveWinner(ctx, 1, first.PickedAt)
					So(err, ShouldBeNil)

					Convey("Then the second removal is a no-op", func() {
						So(removed, ShouldBeFalse)
						ws, _ := repo.Winners(ctx)
						So(ws, ShouldResemble, []models.Winner{second})
					})
				})

				Convey("And a record with the same n but another time is removed", func() {
					removed, err := repo.RemoveWinner(ctx, 1, "2030-01-01T00:00:00.000Z")
					So(err, ShouldBeNil)

					Convey("Then nothing changes", func() {
						So(removed, ShouldBeFalse)
						ws, _ := repo.Winners(ctx)
						So(len(ws), ShouldEqual, 2)
					})
				})

				Convey("And everything is reset", func() {
					So(repo.SaveParticipants(ctx, []models.Participant{{N: 1, Name: "Ann"}}), ShouldBeNil)
					So(repo.ResetAll(ctx), ShouldBeNil)

					Convey("Then participants and winners are both gone", func() {
						ps, _ := repo.Participants(ctx)
						ws, _ := repo.Winners(ctx)
						So(ps, ShouldBeEmpty)
						So(ws, ShouldBeEmpty)
					})
				})

				Convey("And winners alone are cleared", func() {
					So(repo.SaveParticipants(ctx, []models.Participant{{N: 1, Name: "Ann"}}), ShouldBeNil)
					So(repo.ClearWinners(ctx), ShouldBeNil)

					Convey("Then participants survive", func() {
						ps, _ := repo.Participants(ctx)
						ws, _ := repo.Winners(ctx)
						So(len(ps), ShouldEqual, 1)
						So(ws, ShouldBeEmpty)
					})
				})
			})

			Convey("When settings are toggled", func() {
				So(repo.SaveSettings(ctx, models.Settings{AllowRepeatWinners: true}), ShouldBeNil)

				Convey("Then they are read back", func() {
					s, err := repo.Settings(ctx)
					So(err, ShouldBeNil)
					So(s.AllowRepeatWinners, ShouldBeTrue)
				})
			})
		})
	}

	Convey("Given a corrupted winners record", t, func() {
		kv := storage.NewMemoryKV()
		So(kv.Set(ctx, storage.KeyWinners, "{not json"), ShouldBeNil)
		repo := storage.NewRepository(kv)

		Convey("Then loading fails with ErrDecode", func() {
			_, err := repo.Winners(ctx)
			So(errors.Is(err, storage.ErrDecode), ShouldBeTrue)
		})
	})

	Convey("Given an unknown driver", t, func() {
		_, _, err := storage.Open(ctx, "redis", "")

		Convey("Then Open rejects it", func() {
			So(errors.Is(err, storage.ErrUnknownDriver), ShouldBeTrue)
		})
	})
}
