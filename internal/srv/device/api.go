package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jypelle/oledpi/apimodel"
	"github.com/jypelle/oledpi/internal/srv/config"
	"github.com/jypelle/oledpi/internal/srv/event"
	"github.com/jypelle/oledpi/internal/tool"
	"github.com/sirupsen/logrus"
)

type Api struct {
	eventChannel chan event.ApiEvent

	router    *mux.Router
	apiRouter *mux.Router
	server    *http.Server

	config *config.ServerConfig
}

func NewApi(config *config.ServerConfig) *Api {
	api := Api{
		config:       config,
		eventChannel: make(chan event.ApiEvent),
	}

	api.router = mux.NewRouter().StrictSlash(false)

	// API Routes
	api.apiRouter = api.router.PathPrefix("/api").Subrouter()
	api.apiRouter.NotFoundHandler = http.HandlerFunc(ErrorNotFoundAction)
	api.apiRouter.MethodNotAllowedHandler = http.HandlerFunc(ErrorMethodNotAllowedAction)

	// Auth middleware
	api.apiRouter.Use(
		func(handler http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						logrus.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
						strMessage := fmt.Sprintf("%v", rec)
						GlobalErrorAction(w, strMessage, http.StatusInternalServerError)
					}
				}()

				// Check API Key
				apiKey := r.Header.Get("x-api-key")
				if apiKey != config.ServerParam.ApiParam.ApiKey {
					ErrorStatusAction(w, r, http.StatusForbidden)
					return
				}

				logrus.Debugf("PATH: %s %s", r.Host, r.URL.Path)

				handler.ServeHTTP(w, r)
			})
		})

	// Create server check endpoint
	api.apiRouter.HandleFunc("/is_alive",
		func(w http.ResponseWriter, r *http.Request) {
			ErrorStatusAction(w, r, http.StatusOK)
		}).Methods("GET")
	api.apiRouter.HandleFunc("/status",
		func(w http.ResponseWriter, r *http.Request) {
			status := make(chan apimodel.Status, 1)
			if err := api.send(r.Context(), event.ApiEventStatusData{Status: status}); err != nil {
				GlobalErrorAction(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(<-status); err != nil {
				logrus.Debugf("Unable to encode status: %v", err)
			}
		}).Methods("GET")
	api.apiRouter.HandleFunc("/screensaver/{screensaver_id}",
		func(w http.ResponseWriter, r *http.Request) {
			screensaverId := mux.Vars(r)["screensaver_id"]
			api.sendAction(w, r, event.ApiEventScreensaverData{ScreensaverId: screensaverId})
		}).Methods("POST")
	api.apiRouter.HandleFunc("/pop",
		func(w http.ResponseWriter, r *http.Request) {
			api.sendAction(w, r, event.ApiEventPopData{})
		}).Methods("POST")
	api.apiRouter.HandleFunc("/buzzer/{state:on|off}",
		func(w http.ResponseWriter, r *http.Request) {
			api.sendAction(w, r, event.ApiEventBuzzerData{Enabled: mux.Vars(r)["state"] == "on"})
		}).Methods("POST")
	api.apiRouter.HandleFunc("/button/{button_id}",
		func(w http.ResponseWriter, r *http.Request) {
			buttonId, err := strconv.ParseInt(mux.Vars(r)["button_id"], 10, 0)
			if err != nil || buttonId < int64(event.BUTTON_1) || buttonId > int64(event.BUTTON_6) {
				ErrorStatusAction(w, r, http.StatusBadRequest)
				return
			}
			api.sendAction(w, r, event.ApiEventButtonData{ButtonId: event.ButtonId(buttonId)})
		}).Methods("POST")

	// Tell the browser that it's OK for JS to communicate with the server
	headersOk := handlers.AllowedHeaders([]string{"Authorization", "x-api-key"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"})

	api.server = &http.Server{
		Addr:         ":" + strconv.FormatInt(config.ServerParam.ApiParam.SslPort, 10),
		Handler:      handlers.CompressHandler(handlers.CORS(originsOk, headersOk, methodsOk)(api.router)),
		ReadTimeout:  time.Second * 240,
		WriteTimeout: time.Second * 240,
		IdleTimeout:  time.Second * 240,
	}

	return &api
}

// send forwards a request to the control loop and waits for its answer.
func (d *Api) send(ctx context.Context, data interface{}) error {
	result := make(chan error, 1)
	select {
	case d.eventChannel <- event.ApiEvent{Result: result, Data: data}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Api) sendAction(w http.ResponseWriter, r *http.Request, data interface{}) {
	err := d.send(r.Context(), data)
	var errorMessage *apimodel.ErrorMessage
	switch {
	case err == nil:
		ErrorStatusAction(w, r, http.StatusOK)
	case errors.As(err, &errorMessage):
		errorMessage.SendError(w)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		GlobalErrorAction(w, err.Error(), http.StatusServiceUnavailable)
	default:
		GlobalErrorAction(w, err.Error(), http.StatusForbidden)
	}
}

func (d *Api) Start() {
	logrus.Infof("Start api device")

	existServerCert, err := tool.IsFileExists(d.selfSignedCertFilename())
	if err != nil {
		logrus.Fatalf("Unable to access %s: %v\n", d.selfSignedCertFilename(), err)
	}

	existServerKey, err := tool.IsFileExists(d.selfSignedKeyFilename())
	if err != nil {
		logrus.Fatalf("Unable to access %s: %v\n", d.selfSignedKeyFilename(), err)
	}

	if !existServerCert || !existServerKey {
		logrus.Info("Missing cert and key files, trying to generate them...")
		err = tool.GenerateTlsCertificate(
			"jypelle",
			"Oledpi Server",
			d.selfSignedKeyFilename(),
			d.selfSignedCertFilename(),
			[]string{})
		if err != nil {
			logrus.Fatalf("Unable to generate cert and key files : %v\n", err)
		}
		logrus.Info("Self-signed cert and key files generated")
	}

	// Launch https server
	go func() {
		err := d.server.ListenAndServeTLS(d.selfSignedCertFilename(), d.selfSignedKeyFilename())
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Error(err)
		}
	}()
}

func (d *Api) StopSendingEvent() {
	logrus.Infof("Stop api device")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.server.Shutdown(ctx); err != nil {
		logrus.Warnf("Unable to stop api server: %v", err)
	}
}

func (d *Api) EventChannel() <-chan event.ApiEvent {
	return d.eventChannel
}

func (d *Api) selfSignedKeyFilename() string {
	return filepath.Join(d.config.ConfigDir, "key.pem")
}

func (d *Api) selfSignedCertFilename() string {
	return filepath.Join(d.config.ConfigDir, "cert.pem")
}

func ErrorNotFoundAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusNotFound)
}

func ErrorMethodNotAllowedAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusMethodNotAllowed)
}

func ErrorStatusAction(w http.ResponseWriter, r *http.Request, status int) {
	ErrorMessageAction(w, "", status)
}

func GlobalErrorAction(w http.ResponseWriter, message string, status int) {
	ErrorMessageAction(w, message, status)
}

func ErrorMessageAction(w http.ResponseWriter, title string, status int) {
	errorMessage := apimodel.ErrorMessage{
		ErrStatusCode: status,
		ErrMessage:    title,
	}
	if title == "" && status == http.StatusOK {
		errorMessage.ErrMessage = "Ok"
	}
	errorMessage.SendError(w)
}
