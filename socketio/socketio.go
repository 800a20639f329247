package socketio

import (
	"context"
	"strconv"
	"time"

	"chat-service/database"
	"chat-service/model"
	"chat-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/zishang520/engine.io/v2/log"
	"github.com/zishang520/socket.io-go-redis/adapter"
	r_type "github.com/zishang520/socket.io-go-redis/types"
	"github.com/zishang520/socket.io/v2/socket"
)

// Session is attached to an authenticated socket connection.
type Session struct {
	UserID  uint
	Subject string
}

var server *socket.Server

func Init(app *fiber.App) *socket.Server {
	log.DEBUG = true

	options := socket.DefaultServerOptions()
	options.SetServeClient(true)
	options.SetAllowEIO3(true)
	options.SetPingInterval(300 * time.Millisecond)
	options.SetPingTimeout(200 * time.Millisecond)
	options.SetMaxHttpBufferSize(100000000)
	options.SetConnectTimeout(1000 * time.Millisecond)
	options.SetAdapter(&adapter.RedisAdapterBuilder{
		Redis: r_type.NewRedisClient(context.Background(), database.Redis[1]),
		Opts:  &adapter.RedisAdapterOptions{},
	})

	server = socket.NewServer(nil, nil)

	server.Use(func(client *socket.Socket, next func(*socket.ExtendedError)) {
		token, auth := client.Conn().Request().Query().Get("token")

		if auth {
			claims, err := utils.CheckAndExtractTokenMetadata(token, "JWT_ACCESS_KEY")

			if err == nil {
				// Resolve the external subject to a directory row; the
				// socket room is keyed by the internal user id.
				user := new(model.User)
				if err := database.Postgres.Where("external_id = ?", claims.Subject).First(&user).Error; err == nil {
					client.Join(Room(user.ID))
					client.SetData(&Session{
						UserID:  user.ID,
						Subject: claims.Subject,
					})
				}
			}
		}

		next(nil)
	})

	app.Get("/socket.io/", adaptor.HTTPHandler(server.ServeHandler(options)))
	app.Post("/socket.io/", adaptor.HTTPHandler(server.ServeHandler(options)))

	return server
}

// Room is the per-user room every authenticated connection joins.
func Room(userID uint) socket.Room {
	return socket.Room(strconv.FormatUint(uint64(userID), 10))
}

func Broadcast(event string, message any) {
	server.FetchSockets()(func(sockets []*socket.RemoteSocket, _ error) {
		for _, socket := range sockets {
			socket.Emit(event, message)
		}
	})
}

func Emit(userID uint, event string, message any) {
	server.To(Room(userID)).Emit(event, message)
}
