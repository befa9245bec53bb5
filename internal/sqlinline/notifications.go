package sqlinline

const QInsertNotification = `--sql 3af7a468-e7fc-4fb1-856b-55c0037e8862
insert into notifications (id, recipient_id, type, title, message, target_kind, target_id, is_read, created_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::text, nullif($6::text, ''), nullif($7::text, '')::uuid, false, now())
returning created_at;
`

const QListNotifications = `--sql 2547b20d-4ed6-4eb3-8dd4-797dd30e7b20
select id::text, recipient_id::text, type, title, message,
       coalesce(target_kind, ''), coalesce(target_id::text, ''), is_read, created_at
from notifications
where recipient_id = $1::uuid
  and (not $2::boolean or not is_read)
order by created_at desc;
`

const QSetNotificationRead = `--sql ac8e5b2e-4194-47b6-b7f3-e84aaafaf8d8
update notifications
set is_read = $3::boolean
where id = $1::uuid
  and recipient_id = $2::uuid;
`

const QMarkAllNotificationsRead = `--sql 63bfb8f7-f5cd-4a86-b1cc-27882dcac36a
update notifications
set is_read = true
where recipient_id = $1::uuid
  and not is_read;
`

const QDeleteNotification = `--sql 70c849fc-a725-4c1e-bdc2-f8bf751a95fc
delete from notifications
where id = $1::uuid
  and recipient_id = $2::uuid;
`

const QCountUnreadNotifications = `--sql 4fc29473-0964-4d31-81fd-4e93f5550b39
select count(*)
from notifications
where recipient_id = $1::uuid
  and not is_read;
`
