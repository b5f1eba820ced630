package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"watch-party/domain"
	"watch-party/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

// inspect prints the rooms stored in a Badger database, or the viewers of one
// room with -room.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	roomID := flag.String("room", "", "Room to detail")
	noColour := flag.Bool("no-colour", false, "Disable colours")
	flag.Parse()
	color.Enable = !*noColour

	// BypassLockGuard allows opening while the server holds the lock
	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	repository := repositories.NewRoomRepository(db, logs.GetLoggerFromLevel(slog.LevelWarn))
	ctx := context.Background()

	if *roomID != "" {
		room, err := repository.Get(ctx, domain.RoomID(*roomID))
		if err != nil {
			log.Fatal(err)
		}
		printViewers(room.Snapshot())
		return
	}

	snapshots, err := repository.List(ctx)
	if err != nil {
		log.Fatal(err)
	}
	printRooms(snapshots)
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func printRooms(snapshots []domain.RoomSnapshot) {
	color.Bold.Printf("%d room(s)\n\n", len(snapshots))
	table := newTable([]string{"Room", "Film", "Serial", "Owner", "Viewers", "Online", "Version"})
	for _, s := range snapshots {
		online := 0
		for _, v := range s.Viewers {
			if v.Online {
				online++
			}
		}
		table.Append([]string{
			s.ID,
			s.FilmID,
			strconv.FormatBool(s.IsSerial),
			s.OwnerID,
			strconv.Itoa(len(s.Viewers)),
			strconv.Itoa(online),
			strconv.FormatUint(s.Version, 10),
		})
	}
	table.Render()
}

func printViewers(s domain.RoomSnapshot) {
	color.Bold.Printf("Room %s, film %s, version %d\n\n", s.ID, s.FilmID, s.Version)
	table := newTable([]string{"Viewer", "Name", "State", "Time", "Speed", "Episode", "Tags", "Statistics"})
	for _, v := range s.Viewers {
		id := v.ID
		if v.ID == s.OwnerID {
			id = color.Yellow.Sprint(id + " (owner)")
		}
		state := color.Green.Sprint("playing")
		if v.OnPause {
			state = color.Gray.Sprint("paused")
		}
		if !v.Online {
			state = color.Red.Sprint("offline")
		}
		episode := "-"
		if s.IsSerial {
			episode = fmt.Sprintf("S%02dE%02d", v.Season, v.Episode)
		}
		stats := make([]string, 0, len(v.Statistic))
		for name, count := range v.Statistic {
			stats = append(stats, fmt.Sprintf("%s:%d", name, count))
		}
		table.Append([]string{
			id,
			v.UserName,
			state,
			domain.FromTicks(v.TimeLine).String(),
			strconv.FormatFloat(v.Speed, 'f', 2, 64),
			episode,
			strings.Join(v.Tags, ","),
			strings.Join(stats, " "),
		})
	}
	table.Render()
}
