package sqlinline

const QInsertUser = `--sql 0ecaac53-71b0-4266-b864-fd243f47f0f9
insert into users (id, email, name, role, created_at, updated_at)
values ($1::uuid, lower($2::text), $3::text, $4::text, now(), now())
returning created_at, updated_at;
`

const QSelectUserByID = `--sql 902fc968-1024-4069-8613-9eb95b08ba3a
select id::text, email, name, role, created_at, updated_at
from users
where id = $1::uuid
limit 1;
`

const QSelectUserByEmail = `--sql 0e2b9f68-b3be-4f81-82cb-e58ff9d0af0a
select id::text, email, name, role, created_at, updated_at
from users
where email = lower($1::text)
limit 1;
`
