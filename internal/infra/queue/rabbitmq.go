package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.campaigns"

	DispatchQueue = "q.dispatch"
	DispatchKey   = "k.dispatch"
	DispatchDLQ   = "q.dispatch.dlq"

	ScrapeQueue = "q.scrape"
	ScrapeKey   = "k.scrape"

	DLXName = "ex.dlx" // Dead Letter Exchange
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(user, pass, host, port string) (*RabbitMQ, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir canal: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

func setupTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	_, err = ch.QueueDeclare(DispatchDLQ, true, false, false, false, nil)
	if err != nil {
		return err
	}

	err = ch.QueueBind(DispatchDLQ, DispatchKey, DLXName, false, nil)
	if err != nil {
		return err
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName, // Nack sem requeue manda pra DLX
		"x-dead-letter-routing-key": DispatchKey,
	}

	err = ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	_, err = ch.QueueDeclare(DispatchQueue, true, false, false, false, args)
	if err != nil {
		return err
	}

	err = ch.QueueBind(DispatchQueue, DispatchKey, ExchangeName, false, nil)
	if err != nil {
		return err
	}

	// Fila de scrape: best-effort, sem DLQ — job perdido não é perda de
	// dado, o webhook de conclusão nunca chega e o contato fica como estava.
	_, err = ch.QueueDeclare(ScrapeQueue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	return ch.QueueBind(ScrapeQueue, ScrapeKey, ExchangeName, false, nil)
}
